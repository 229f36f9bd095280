package cmd

import (
	"flag"

	"github.com/leg100/kdr/cmd/backup"
	"github.com/leg100/kdr/cmd/restore"
	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/version"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func init() {
	// Register klog flags, e.g. -v, on the global flagset
	klog.InitFlags(nil)
}

func RootCmd(f *cmdutil.Factory) *cobra.Command {
	root := &cobra.Command{
		Use:           "kdr",
		Short:         "Back up and restore kubernetes namespaces",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.SetVersionTemplate(`{{printf "%s version " .Name}}{{printf "%s" .Version}}` + "\n")

	// Add flags registered by imported packages (e.g. klog)
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	backupCmd, _ := backup.BackupCmd(f)
	restoreCmd, _ := restore.RestoreCmd(f)
	namespacesCmd, _ := restore.NamespacesCmd(f)

	root.AddCommand(
		backupCmd,
		restoreCmd,
		namespacesCmd,
		versionCmd(f),
	)

	return root
}
