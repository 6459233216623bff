package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"

	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

// PubKeyTypeSecp256k1 is the amino name of secp256k1 public keys
const PubKeyTypeSecp256k1 = "tendermint/PubKeySecp256k1"

var (
	_ types.Signer = &LocalSigner{}
	_ types.Signer = &LedgerSigner{}
)

// LocalSigner signs with a key stored in the keyring.
type LocalSigner struct {
	kr      keyring.Keyring
	keyName string
	address string
}

func NewLocalSigner(kr keyring.Keyring, keyName, accountPrefix string) (*LocalSigner, error) {
	record, err := kr.Key(keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", keyName, err)
	}
	if record.GetType() == keyring.TypeLedger {
		return nil, fmt.Errorf("key %s is held by a Ledger device", keyName)
	}

	address, err := recordAddress(record, accountPrefix)
	if err != nil {
		return nil, err
	}

	return &LocalSigner{kr: kr, keyName: keyName, address: address}, nil
}

func (s *LocalSigner) Address() string {
	return s.address
}

func (s *LocalSigner) Sign(ctx context.Context, signBytes []byte) (*types.Signature, error) {
	return signWithKeyring(ctx, s.kr, s.keyName, signBytes)
}

// LedgerSigner signs on a Ledger device. The keyring only keeps a reference
// to the device key.
type LedgerSigner struct {
	kr      keyring.Keyring
	keyName string
	address string
}

// NewLedgerSigner registers the Ledger key under keyName the first time it is
// used; the device must be connected and unlocked at that point.
func NewLedgerSigner(kr keyring.Keyring, keyName, accountPrefix string, coinType uint32) (*LedgerSigner, error) {
	record, err := kr.Key(keyName)
	switch {
	case err == nil:
		if record.GetType() != keyring.TypeLedger {
			return nil, fmt.Errorf("key %s is not a Ledger key", keyName)
		}
	case errors.Is(err, sdkerrors.ErrKeyNotFound):
		record, err = kr.SaveLedgerKey(keyName, hd.Secp256k1, accountPrefix, coinType, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("the Ledger is not connected or locked: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load key %s: %w", keyName, err)
	}

	address, err := recordAddress(record, accountPrefix)
	if err != nil {
		return nil, err
	}

	return &LedgerSigner{kr: kr, keyName: keyName, address: address}, nil
}

func (s *LedgerSigner) Address() string {
	return s.address
}

func (s *LedgerSigner) Sign(ctx context.Context, signBytes []byte) (*types.Signature, error) {
	sig, err := signWithKeyring(ctx, s.kr, s.keyName, signBytes)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	return sig, nil
}

// NewSignerFromConfig picks the signer once at startup.
func NewSignerFromConfig(cfg *config.ChainConfig, passphrase string) (types.Signer, error) {
	kr, err := OpenKeyring(cfg, passphrase)
	if err != nil {
		return nil, err
	}

	if cfg.UseLedger {
		return NewLedgerSigner(kr, cfg.Key, cfg.AccountPrefix, cfg.CoinType)
	}

	return NewLocalSigner(kr, cfg.Key, cfg.AccountPrefix)
}

func signWithKeyring(ctx context.Context, kr keyring.Keyring, keyName string, signBytes []byte) (*types.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig, pubKey, err := kr.Sign(keyName, signBytes, signing.SignMode_SIGN_MODE_LEGACY_AMINO_JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with key %s: %w", keyName, err)
	}

	pkType, err := aminoPubKeyType(pubKey)
	if err != nil {
		return nil, err
	}

	return &types.Signature{
		Signature:   sig,
		PubKeyBytes: pubKey.Bytes(),
		PubKeyType:  pkType,
	}, nil
}

func aminoPubKeyType(pk cryptotypes.PubKey) (string, error) {
	switch pk.(type) {
	case *secp256k1.PubKey:
		return PubKeyTypeSecp256k1, nil
	default:
		return "", fmt.Errorf("unsupported public key type %T", pk)
	}
}

func recordAddress(record *keyring.Record, accountPrefix string) (string, error) {
	addr, err := record.GetAddress()
	if err != nil {
		return "", fmt.Errorf("failed to get address from key: %w", err)
	}

	return sdk.Bech32ifyAddressBytes(accountPrefix, addr)
}
