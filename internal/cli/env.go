package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

// envCommand creates the env command.
func (c *CLI) envCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the environment changes applied before loading",
		Long: `Show the variables update-checker sets before loading a project: a fallback
COMPOSER_HOME when no home directory is configured, and CGI_HTTP_PROXY when an
outbound proxy is configured. Nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			plan := c.newLoader(cmd.Context()).Plan()
			if len(plan) == 0 {
				printInfo(w, "Environment already complete, nothing to set")
				return nil
			}
			for _, k := range slices.Sorted(maps.Keys(plan)) {
				printKeyValue(w, k, plan[k])
			}
			return nil
		},
	}
}
