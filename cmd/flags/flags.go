package flags

import (
	"github.com/spf13/cobra"
)

func AddKubeContextFlag(cmd *cobra.Command, kubeContext *string) {
	cmd.Flags().StringVar(kubeContext, "context", "", "Set kube context (defaults to kubeconfig current context)")
}

func AddDryRunFlag(cmd *cobra.Command, dryRun *bool) {
	cmd.Flags().BoolVar(dryRun, "dry-run", false, "Validate resources without persisting them")
}

func AddCustomKindsFlag(cmd *cobra.Command, kinds *map[string]string) {
	StringToStringVar(cmd.Flags(), kinds, "custom-kind", "Additional custom kinds to back up, as Kind=group/version/plural")
}
