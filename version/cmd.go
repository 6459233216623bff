package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

func AddVersionCommand(rootCmd *cobra.Command, binaryName string) {
	rootCmd.AddCommand(CommandVersion(binaryName))
}

// CommandVersion prints the version, commit and commit time of the binary.
func CommandVersion(binaryName string) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Prints version of this binary.",
		Aliases: []string{"v"},
		Example: fmt.Sprintf("%s version", binaryName),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := Get()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Version:       %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "Git Commit:    %s\n", info.Commit)
			_, _ = fmt.Fprintf(out, "Git Timestamp: %s\n", info.Timestamp)
		},
	}
}
