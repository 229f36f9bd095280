// Package apply provides strategies for restoring resources to a cluster
package apply

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"k8s.io/klog/v2"
)

// Executor runs external commands
type Executor interface {
	run(context.Context, []string) error
}

type executor struct {
	out, errOut io.Writer
}

func (e *executor) run(ctx context.Context, args []string) error {
	klog.V(1).Infof("running command %v\n", args)

	exe := exec.CommandContext(ctx, args[0], args[1:]...)
	exe.Stdout = e.out
	exe.Stderr = e.errOut

	if err := exe.Run(); err != nil {
		return fmt.Errorf("unable to run command %v: %w", args, err)
	}
	return nil
}
