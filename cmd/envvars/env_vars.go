package envvars

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Prefix of environment variables that set flags
const Prefix = "KDR_"

// SetFlagsFromEnvVariables sets each flag of cmd and its subcommands from an
// environment variable named after the flag, e.g. --cluster-name is set by
// KDR_CLUSTER_NAME. Flags passed on the command line are parsed afterwards
// and take precedence.
func SetFlagsFromEnvVariables(cmd *cobra.Command) error {
	var err error
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		name := EnvVarName(f.Name)
		if val, present := os.LookupEnv(name); present {
			// Set via the command's flagset so the flag is marked as changed
			if serr := cmd.Flags().Set(f.Name, val); serr != nil {
				err = fmt.Errorf("invalid value %q for %s: %w", val, name, serr)
			}
		}
	})
	if err != nil {
		return err
	}
	for _, child := range cmd.Commands() {
		if err := SetFlagsFromEnvVariables(child); err != nil {
			return err
		}
	}
	return nil
}

// EnvVarName converts a flag name into its environment variable name
func EnvVarName(flag string) string {
	return Prefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
