package daemon

import (
	"github.com/spf13/cobra"
)

// AddDaemonCommands registers the feeder daemon commands on cmd.
func AddDaemonCommands(cmd *cobra.Command, binaryName string) {
	cmd.AddCommand(
		CommandInit(binaryName),
		CommandStart(binaryName),
		CommandKeys(binaryName),
		CommandHistory(binaryName),
	)
}
