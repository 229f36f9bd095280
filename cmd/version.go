package cmd

import (
	"fmt"

	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/version"
	"github.com/spf13/cobra"
)

func versionCmd(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print client version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(f.Out, "kdr version %s", version.PrintableVersion())
		},
	}
	return cmd
}
