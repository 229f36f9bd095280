package apply

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Kubectl writes each namespace's resources to a multi-document YAML file
// and applies it with kubectl
type Kubectl struct {
	dir         string
	dryRun      bool
	kubeContext string
	exec        Executor

	// Current namespace's file
	file *os.File
}

type KubectlOption func(*Kubectl)

// WithDryRun passes --dry-run=client to kubectl
func WithDryRun(dryRun bool) KubectlOption {
	return func(k *Kubectl) {
		k.dryRun = dryRun
	}
}

// WithKubeContext passes --context to kubectl
func WithKubeContext(kubeContext string) KubectlOption {
	return func(k *Kubectl) {
		k.kubeContext = kubeContext
	}
}

func withExecutor(exec Executor) KubectlOption {
	return func(k *Kubectl) {
		k.exec = exec
	}
}

// NewKubectl constructs a kubectl strategy writing files to dir. Output from
// kubectl is written to out and errOut.
func NewKubectl(dir string, out, errOut io.Writer, opts ...KubectlOption) *Kubectl {
	k := &Kubectl{
		dir:  dir,
		exec: &executor{out: out, errOut: errOut},
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

func (k *Kubectl) StartNamespace(ctx context.Context, namespace string) error {
	if k.file != nil {
		k.file.Close()
	}
	f, err := os.Create(filepath.Join(k.dir, namespace+".yaml"))
	if err != nil {
		return err
	}
	k.file = f
	return nil
}

func (k *Kubectl) ProcessResource(ctx context.Context, data []byte) error {
	if k.file == nil {
		return fmt.Errorf("no namespace started")
	}
	if _, err := k.file.Write(data); err != nil {
		return err
	}
	sep := "---\n"
	if !bytes.HasSuffix(data, []byte("\n")) {
		sep = "\n" + sep
	}
	_, err := k.file.WriteString(sep)
	return err
}

func (k *Kubectl) FinishNamespace(ctx context.Context) error {
	if k.file == nil {
		return fmt.Errorf("no namespace started")
	}
	path := k.file.Name()
	if err := k.file.Close(); err != nil {
		return err
	}
	k.file = nil

	args := []string{"kubectl", "apply", "-f", path}
	if k.kubeContext != "" {
		args = append(args, "--context", k.kubeContext)
	}
	if k.dryRun {
		args = append(args, "--dry-run=client")
	}
	return k.exec.run(ctx, args)
}
