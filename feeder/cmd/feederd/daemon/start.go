package daemon

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/juju/fslock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fdcmd "github.com/babylonlabs-io/oracle-feeder/feeder/cmd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/service"
	"github.com/babylonlabs-io/oracle-feeder/log"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

// CommandStart returns the start command of feederd.
func CommandStart(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "start",
		Short: "Start the oracle feeder daemon.",
		Long: fmt.Sprintf(`Start the voting loop of the oracle feeder. The key configured in chain.key must exist, see "%s keys add".

The passphrase of a "file" keyring is read from the %s environment variable or prompted for.`, binaryName, passphraseEnvVar),
		Example: fmt.Sprintf(`%s start --home /home/user/.feederd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    fdcmd.RunEWithClientCtx(runStartCmd),
	}

	return cmd
}

func runStartCmd(ctx client.Context, cmd *cobra.Command, _ []string) error {
	homePath, err := filepath.Abs(ctx.HomeDir)
	if err != nil {
		return fmt.Errorf("failed to get home path: %w", err)
	}
	homePath = util.CleanAndExpandPath(homePath)
	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// a second feeder on the same home would vote with the same sequence
	lock := fslock.New(config.LockFile(homePath))
	if err := lock.TryLock(); err != nil {
		return fmt.Errorf("failed to lock %s, is another feeder running? %w", config.LockFile(homePath), err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	passphrase, err := keyringPassphrase(bufio.NewReader(cmd.InOrStdin()), cfg.ChainConfig.KeyringBackend, false)
	if err != nil {
		return err
	}

	logger, err := log.NewRootLoggerWithFile(config.LogFile(homePath), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize the logger: %w", err)
	}

	dbBackend, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return fmt.Errorf("failed to create db backend: %w", err)
	}
	defer func() {
		if err := dbBackend.Close(); err != nil {
			logger.Error("failed to close the database", zap.Error(err))
		}
	}()

	app, err := service.NewFeederAppFromConfig(cfg, dbBackend, passphrase, logger)
	if err != nil {
		return fmt.Errorf("failed to create the feeder app: %w", err)
	}

	if err := app.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start the feeder app: %w", err)
	}

	<-cmd.Context().Done()
	logger.Info("received the shutdown signal")

	return app.Stop()
}
