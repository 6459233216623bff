package keyring

import (
	"fmt"
	"io"
	"strings"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/go-bip39"
)

const (
	secp256k1Type       = "secp256k1"
	mnemonicEntropySize = 256
	// MnemonicWords is the length of the mnemonics accepted by keys add
	MnemonicWords = 24
	// MinPassphraseLength applies to the passphrase protecting the keyring
	MinPassphraseLength = 8
)

type KeyInfo struct {
	Name       string
	AccAddress sdk.AccAddress
	Mnemonic   string
}

// Bech32Address renders the account address with the given prefix.
func (ki *KeyInfo) Bech32Address(prefix string) (string, error) {
	return sdk.Bech32ifyAddressBytes(prefix, ki.AccAddress)
}

type ChainKeyringController struct {
	kr      keyring.Keyring
	keyName string
}

func NewChainKeyringController(ctx client.Context, name, keyringBackend string, input io.Reader) (*ChainKeyringController, error) {
	if name == "" {
		return nil, fmt.Errorf("the key name should not be empty")
	}

	kr, err := openKeyring(ctx.KeyringDir, ctx.ChainID, keyringBackend, input)
	if err != nil {
		return nil, err
	}

	return &ChainKeyringController{
		keyName: name,
		kr:      kr,
	}, nil
}

func NewChainKeyringControllerWithKeyring(kr keyring.Keyring, name string) (*ChainKeyringController, error) {
	if name == "" {
		return nil, fmt.Errorf("the key name should not be empty")
	}

	return &ChainKeyringController{
		kr:      kr,
		keyName: name,
	}, nil
}

func (kc *ChainKeyringController) GetKeyring() keyring.Keyring {
	return kc.kr
}

// DefaultHDPath is the derivation path of the first account for coinType.
func DefaultHDPath(coinType uint32) string {
	return hd.CreateHDPath(coinType, 0, 0).String()
}

// ValidateMnemonic accepts only 24 word BIP-39 mnemonics.
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) != MnemonicWords {
		return fmt.Errorf("the mnemonic must have %d words, got %d", MnemonicWords, len(words))
	}
	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return fmt.Errorf("the mnemonic is not a valid BIP-39 mnemonic")
	}

	return nil
}

func ValidatePassphrase(passphrase, confirmation string) error {
	if len(passphrase) < MinPassphraseLength {
		return fmt.Errorf("the passphrase must be at least %d characters", MinPassphraseLength)
	}
	if passphrase != confirmation {
		return fmt.Errorf("the passphrases do not match")
	}

	return nil
}

// CreateChainKey imports the given mnemonic, or a freshly generated one when
// it is empty, under the controller's key name.
func (kc *ChainKeyringController) CreateChainKey(bip39Passphrase, hdPath, mnemonic string) (*KeyInfo, error) {
	keyringAlgos, _ := kc.kr.SupportedAlgorithms()
	algo, err := keyring.NewSigningAlgoFromString(secp256k1Type, keyringAlgos)
	if err != nil {
		return nil, fmt.Errorf("failed to create signing algorithm: %w", err)
	}

	if len(mnemonic) == 0 {
		entropySeed, err := bip39.NewEntropy(mnemonicEntropySize)
		if err != nil {
			return nil, fmt.Errorf("failed to generate entropy: %w", err)
		}

		mnemonic, err = bip39.NewMnemonic(entropySeed)
		if err != nil {
			return nil, fmt.Errorf("failed to generate mnemonic: %w", err)
		}
	} else {
		mnemonic = strings.Join(strings.Fields(mnemonic), " ")
		if err := ValidateMnemonic(mnemonic); err != nil {
			return nil, err
		}
	}

	record, err := kc.kr.NewAccount(kc.keyName, mnemonic, bip39Passphrase, hdPath, algo)
	if err != nil {
		return nil, fmt.Errorf("failed to create new account: %w", err)
	}

	accAddress, err := record.GetAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get address from record: %w", err)
	}

	return &KeyInfo{
		Name:       kc.keyName,
		AccAddress: accAddress,
		Mnemonic:   mnemonic,
	}, nil
}

// Address returns the address from the keyring
func (kc *ChainKeyringController) Address() (sdk.AccAddress, error) {
	k, err := kc.kr.Key(kc.keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	addr, err := k.GetAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get address from key: %w", err)
	}

	return addr, nil
}
