package keyring

import (
	"fmt"
	"io"
	"strings"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"

	"github.com/babylonlabs-io/oracle-feeder/codec"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
)

// OpenKeyring opens the keyring described by the [chain] section. For the
// file backend the passphrase answers both the unlock prompt and, when the
// keyring is new, its confirmation.
func OpenKeyring(cfg *config.ChainConfig, passphrase string) (keyring.Keyring, error) {
	return openKeyring(cfg.KeyDirectory, cfg.ChainID, cfg.KeyringBackend, passphraseInput(passphrase))
}

func openKeyring(keyringDir, chainID, backend string, input io.Reader) (keyring.Keyring, error) {
	if backend == "" {
		return nil, fmt.Errorf("the keyring backend should not be empty")
	}

	ctx := CreateClientCtx(keyringDir, chainID)
	kr, err := keyring.New(ctx.ChainID, backend, ctx.KeyringDir, input, ctx.Codec, ctx.KeyringOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keyring in %s: %w", backend, ctx.KeyringDir, err)
	}

	return kr, nil
}

// CreateClientCtx returns the client context used to open keyrings. An
// empty directory falls back to the default feederd home.
func CreateClientCtx(keyringDir string, chainID string) client.Context {
	if keyringDir == "" {
		keyringDir = config.DefaultFeederdDir
	}

	return client.Context{}.
		WithChainID(chainID).
		WithCodec(codec.MakeCodec()).
		WithKeyringDir(keyringDir)
}

func passphraseInput(passphrase string) io.Reader {
	return strings.NewReader(strings.Repeat(passphrase+"\n", 2))
}
