package daemon

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/input"
	"github.com/spf13/cobra"

	fdcmd "github.com/babylonlabs-io/oracle-feeder/feeder/cmd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	fdkr "github.com/babylonlabs-io/oracle-feeder/keyring"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

// KeyOutput is printed by the keys commands.
type KeyOutput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// CommandKeys returns the keys group command.
func CommandKeys(binaryName string) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the key of the feeder account.",
	}
	keysCmd.AddCommand(
		commandKeysAdd(binaryName),
		commandKeysShow(binaryName),
	)

	return keysCmd
}

func commandKeysAdd(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "add",
		Short: "Add the feeder account key to the keyring.",
		Long: `Creates the key named in chain.key, or the one given with --key-name. With --recover the
24 word mnemonic is prompted for, otherwise a new one is generated and printed once.
When chain.useledger is set the key is registered from the Ledger device instead.`,
		Example: fmt.Sprintf(`%s keys add --recover --home /home/user/.feederd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    fdcmd.RunEWithClientCtx(runKeysAddCmd),
	}
	cmd.Flags().String(keyNameFlag, "", "The name of the key, defaults to chain.key")
	cmd.Flags().String(keyringBackendFlag, "", "The keyring backend, defaults to chain.keyringbackend")
	cmd.Flags().Bool(recoverFlag, false, "Import an existing mnemonic instead of generating one")

	return cmd
}

func commandKeysShow(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "show",
		Short:   "Show the address of the feeder account key.",
		Example: fmt.Sprintf(`%s keys show --home /home/user/.feederd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    fdcmd.RunEWithClientCtx(runKeysShowCmd),
	}
	cmd.Flags().String(keyNameFlag, "", "The name of the key, defaults to chain.key")
	cmd.Flags().String(keyringBackendFlag, "", "The keyring backend, defaults to chain.keyringbackend")

	return cmd
}

func runKeysAddCmd(ctx client.Context, cmd *cobra.Command, _ []string) error {
	chainCfg, err := loadChainConfig(ctx, cmd)
	if err != nil {
		return err
	}

	buf := bufio.NewReader(cmd.InOrStdin())
	passphrase, err := keyringPassphrase(buf, chainCfg.KeyringBackend, true)
	if err != nil {
		return err
	}

	kr, err := fdkr.OpenKeyring(chainCfg, passphrase)
	if err != nil {
		return err
	}

	if chainCfg.UseLedger {
		signer, err := fdkr.NewLedgerSigner(kr, chainCfg.Key, chainCfg.AccountPrefix, chainCfg.CoinType)
		if err != nil {
			return err
		}
		printRespJSON(cmd, KeyOutput{Name: chainCfg.Key, Address: signer.Address()})

		return nil
	}

	if _, err := kr.Key(chainCfg.Key); err == nil {
		return fmt.Errorf("the key %s already exists", chainCfg.Key)
	}

	recoverKey, err := cmd.Flags().GetBool(recoverFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", recoverFlag, err)
	}

	var mnemonic string
	if recoverKey {
		mnemonic, err = input.GetString(fmt.Sprintf("Enter your %d word bip39 mnemonic", fdkr.MnemonicWords), buf)
		if err != nil {
			return err
		}
		if err := fdkr.ValidateMnemonic(mnemonic); err != nil {
			return err
		}
	}

	kc, err := fdkr.NewChainKeyringControllerWithKeyring(kr, chainCfg.Key)
	if err != nil {
		return err
	}
	keyInfo, err := kc.CreateChainKey("", fdkr.DefaultHDPath(chainCfg.CoinType), mnemonic)
	if err != nil {
		return err
	}

	address, err := keyInfo.Bech32Address(chainCfg.AccountPrefix)
	if err != nil {
		return err
	}

	out := KeyOutput{Name: keyInfo.Name, Address: address}
	if !recoverKey {
		// shown once, the keyring never returns it again
		out.Mnemonic = keyInfo.Mnemonic
	}
	printRespJSON(cmd, out)

	return nil
}

func runKeysShowCmd(ctx client.Context, cmd *cobra.Command, _ []string) error {
	chainCfg, err := loadChainConfig(ctx, cmd)
	if err != nil {
		return err
	}

	passphrase, err := keyringPassphrase(bufio.NewReader(cmd.InOrStdin()), chainCfg.KeyringBackend, false)
	if err != nil {
		return err
	}

	kr, err := fdkr.OpenKeyring(chainCfg, passphrase)
	if err != nil {
		return err
	}
	kc, err := fdkr.NewChainKeyringControllerWithKeyring(kr, chainCfg.Key)
	if err != nil {
		return err
	}

	accAddr, err := kc.Address()
	if err != nil {
		return err
	}
	keyInfo := fdkr.KeyInfo{Name: chainCfg.Key, AccAddress: accAddr}
	address, err := keyInfo.Bech32Address(chainCfg.AccountPrefix)
	if err != nil {
		return err
	}
	printRespJSON(cmd, KeyOutput{Name: chainCfg.Key, Address: address})

	return nil
}

// loadChainConfig reads the chain section of the config and applies the
// key flags on top of it.
func loadChainConfig(ctx client.Context, cmd *cobra.Command) (*config.ChainConfig, error) {
	homePath, err := filepath.Abs(ctx.HomeDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadConfig(util.CleanAndExpandPath(homePath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	chainCfg := cfg.ChainConfig

	keyName, err := cmd.Flags().GetString(keyNameFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to read flag %s: %w", keyNameFlag, err)
	}
	if keyName != "" {
		chainCfg.Key = keyName
	}

	backend, err := cmd.Flags().GetString(keyringBackendFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to read flag %s: %w", keyringBackendFlag, err)
	}
	if backend != "" {
		chainCfg.KeyringBackend = backend
	}

	return chainCfg, nil
}
