package daemon

import (
	"fmt"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/jessevdk/go-flags"
	"github.com/spf13/cobra"

	fdcmd "github.com/babylonlabs-io/oracle-feeder/feeder/cmd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

// CommandInit returns the init command of feederd that creates the home directory.
func CommandInit(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "init",
		Short:   "Initialize a feeder home directory.",
		Long:    `Creates a new feeder home directory with the default config. Set chain.validatoraddress and the price sources before starting.`,
		Example: fmt.Sprintf(`%s init --home /home/user/.feederd --force`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    fdcmd.RunEWithClientCtx(runInitCmd),
	}
	cmd.Flags().Bool(forceFlag, false, "Override existing configuration")

	return cmd
}

func runInitCmd(ctx client.Context, cmd *cobra.Command, _ []string) error {
	homePath, err := filepath.Abs(ctx.HomeDir)
	if err != nil {
		return err
	}
	homePath = util.CleanAndExpandPath(homePath)

	force, err := cmd.Flags().GetBool(forceFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", forceFlag, err)
	}

	if util.FileExists(config.CfgFile(homePath)) && !force {
		return fmt.Errorf("config file %s already exists", config.CfgFile(homePath))
	}

	if err := util.MakeDirectory(homePath); err != nil {
		return err
	}
	if err := util.MakeDirectory(config.LogDir(homePath)); err != nil {
		return err
	}

	defaultConfig := config.DefaultConfigWithHome(homePath)
	fileParser := flags.NewParser(&defaultConfig, flags.Default)
	if err := flags.NewIniParser(fileParser).WriteFile(config.CfgFile(homePath), flags.IniIncludeComments|flags.IniIncludeDefaults); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized the feeder home at %s\n", homePath)

	return nil
}
