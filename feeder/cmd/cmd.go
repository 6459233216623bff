package cmd

import (
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/babylonlabs-io/oracle-feeder/codec"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
)

// PersistClientCtx stores a client context on the command before it runs.
// Values from feederd.conf fill whatever the flags left unset; a home
// without a config (before init) only gets the home directory.
func PersistClientCtx(ctx client.Context) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cdc := codec.MakeCodec()
		base := ctx.
			WithCodec(cdc).
			WithInterfaceRegistry(cdc.InterfaceRegistry()).
			WithInput(cmd.InOrStdin()).
			WithOutput(cmd.OutOrStdout())

		if err := client.SetCmdClientContextHandler(base, cmd); err != nil {
			return err
		}
		withFlags := client.GetClientContextFromCmd(cmd)

		cfg, err := config.ReadConfig(withFlags.HomeDir)
		if err != nil {
			return nil //nolint:nilerr
		}

		return client.SetCmdClientContext(cmd, FillContextFromChainConfig(withFlags, cmd.Flags(), cfg.ChainConfig))
	}
}

// FillContextFromChainConfig copies key name, chain id and keyring dir from
// the [chain] section unless the matching flag was given.
func FillContextFromChainConfig(ctx client.Context, flagSet *pflag.FlagSet, chainCfg *config.ChainConfig) client.Context {
	if !flagSet.Changed(flags.FlagFrom) {
		ctx = ctx.WithFrom(chainCfg.Key)
	}
	if !flagSet.Changed(flags.FlagChainID) {
		ctx = ctx.WithChainID(chainCfg.ChainID)
	}
	if !flagSet.Changed(flags.FlagKeyringDir) {
		ctx = ctx.WithKeyringDir(chainCfg.KeyDirectory)
	}

	return ctx
}

// RunEWithClientCtx hands the persisted client context to fRunWithCtx.
func RunEWithClientCtx(
	fRunWithCtx func(ctx client.Context, cmd *cobra.Command, args []string) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return fRunWithCtx(client.GetClientContextFromCmd(cmd), cmd, args)
	}
}
