package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/spf13/cobra"

	fdcmd "github.com/babylonlabs-io/oracle-feeder/feeder/cmd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/cmd/feederd/daemon"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/version"
)

const BinaryName = "feederd"

// NewRootCmd creates a new root command for feederd. It is called once in the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               BinaryName,
		Short:             fmt.Sprintf("%s - Oracle Price Feeder Daemon.", BinaryName),
		Long:              fmt.Sprintf(`%s submits exchange rate prevotes and votes to the oracle module on behalf of a validator.`, BinaryName),
		SilenceErrors:     false,
		PersistentPreRunE: fdcmd.PersistClientCtx(client.Context{}),
	}
	rootCmd.PersistentFlags().String(flags.FlagHome, config.DefaultFeederdDir, "The application home directory")

	return rootCmd
}

func main() {
	cmd := NewRootCmd()

	daemon.AddDaemonCommands(cmd, BinaryName)
	version.AddVersionCommand(cmd, BinaryName)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your %s CLI '%s'", BinaryName, err)
		os.Exit(1) //nolint:gocritic
	}
}
