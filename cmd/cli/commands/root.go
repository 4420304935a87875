package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errUnhealthy signals --fail-on-down with at least one non-healthy row.
var errUnhealthy = errors.New("one or more domains are not healthy")

var rootCmd = &cobra.Command{
	Use:           "statuscheck",
	Short:         "Probe a list of domains over HTTPS",
	Long:          `Runs one probing round over the configured domains and reports each as healthy, erroring or unreachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		return 2
	}
	return 0
}

func init() {
	rootCmd.AddCommand(newRoundCmd())
	rootCmd.AddCommand(newDomainsCmd())
}
