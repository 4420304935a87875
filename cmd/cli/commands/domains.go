package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/sitestatus/internal/config"
)

func newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the configured domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range config.FromEnv().Domains {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}
