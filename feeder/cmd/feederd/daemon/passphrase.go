package daemon

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cosmos/cosmos-sdk/client/input"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"

	fdkr "github.com/babylonlabs-io/oracle-feeder/keyring"
)

// keyringPassphrase returns the passphrase of a file keyring, from the
// environment or an interactive prompt. Other backends need none. With
// confirm set the passphrase is asked twice and checked.
func keyringPassphrase(buf *bufio.Reader, backend string, confirm bool) (string, error) {
	if backend != keyring.BackendFile {
		return "", nil
	}

	if p, ok := os.LookupEnv(passphraseEnvVar); ok {
		if confirm {
			return p, fdkr.ValidatePassphrase(p, p)
		}

		return p, nil
	}

	passphrase, err := input.GetPassword("Enter the keyring passphrase:", buf)
	if err != nil {
		return "", fmt.Errorf("failed to read the keyring passphrase: %w", err)
	}
	if !confirm {
		return passphrase, nil
	}

	confirmation, err := input.GetPassword("Repeat the keyring passphrase:", buf)
	if err != nil {
		return "", fmt.Errorf("failed to read the keyring passphrase: %w", err)
	}
	if err := fdkr.ValidatePassphrase(passphrase, confirmation); err != nil {
		return "", err
	}

	return passphrase, nil
}
