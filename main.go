package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leg100/kdr/cmd"
	"github.com/leg100/kdr/cmd/envvars"
	cmdutil "github.com/leg100/kdr/cmd/util"
	"k8s.io/klog/v2"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Stdin); err != nil {
		os.Exit(handleError(err, os.Stderr))
	}
}

func run(args []string, out, errout io.Writer, in io.Reader) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer klog.Flush()

	root := cmd.RootCmd(cmdutil.NewFactory(out, errout, in))
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errout)

	if err := envvars.SetFlagsFromEnvVariables(root); err != nil {
		return err
	}

	return root.ExecuteContext(ctx)
}

// handleError prints err and returns the exit code
func handleError(err error, out io.Writer) int {
	fmt.Fprintf(out, "Error: %s\n", err.Error())
	return 1
}
