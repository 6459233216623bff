package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"

	"github.com/babylonlabs-io/oracle-feeder/types"
)

const (
	defaultLCDAddress     = "http://127.0.0.1:1317"
	defaultChainID        = "columbus-3"
	defaultKeyName        = "oracle-feeder"
	defaultKeyringBackend = "file"
	defaultAccountPrefix  = "terra"
	defaultFees           = "0uluna"
	defaultGas            = uint64(200000)
	defaultMemo           = "Voting from oracle feeder"
	defaultRequestTimeout = 20 * time.Second
	// DefaultCoinType is the SLIP-44 coin type of Luna
	DefaultCoinType = uint32(330)
)

// ChainConfig holds everything needed to talk to the chain and to sign as the feeder.
type ChainConfig struct {
	LCDAddress       string        `long:"lcdaddress" description:"The address of the chain LCD (REST) server"`
	ChainID          string        `long:"chainid" description:"The chain ID of the chain"`
	Key              string        `long:"key" description:"The name of the key used to sign oracle transactions"`
	KeyringBackend   string        `long:"keyring-backend" description:"Type of keyring to use" choice:"file" choice:"os" choice:"test"`
	KeyDirectory     string        `long:"key-dir" description:"Directory to store keys in"`
	UseLedger        bool          `long:"useledger" description:"Sign with a Ledger device instead of a local key"`
	CoinType         uint32        `long:"cointype" description:"The BIP-44 coin type used to derive the Ledger key"`
	AccountPrefix    string        `long:"account-prefix" description:"The bech32 prefix of account addresses"`
	ValidatorAddress string        `long:"validator" description:"The operator address of the validator this feeder votes for"`
	Fees             string        `long:"fees" description:"Fees paid by every oracle transaction, e.g. 0uluna"`
	Gas              uint64        `long:"gas" description:"Gas limit of every oracle transaction"`
	Memo             string        `long:"memo" description:"Memo attached to every oracle transaction"`
	BroadcastMode    string        `long:"broadcast-mode" description:"Broadcast mode of the LCD" choice:"block" choice:"sync"`
	Timeout          time.Duration `long:"timeout" description:"Client timeout when doing queries"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		LCDAddress:     defaultLCDAddress,
		ChainID:        defaultChainID,
		Key:            defaultKeyName,
		KeyringBackend: defaultKeyringBackend,
		CoinType:       DefaultCoinType,
		AccountPrefix:  defaultAccountPrefix,
		Fees:           defaultFees,
		Gas:            defaultGas,
		Memo:           defaultMemo,
		BroadcastMode:  string(types.BroadcastModeBlock),
		Timeout:        defaultRequestTimeout,
	}
}

func (cfg *ChainConfig) Validate() error {
	u, err := url.Parse(cfg.LCDAddress)
	if err != nil {
		return fmt.Errorf("invalid lcd address %q: %w", cfg.LCDAddress, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid lcd address %q: scheme must be http or https", cfg.LCDAddress)
	}

	if cfg.ChainID == "" {
		return fmt.Errorf("chain id should not be empty")
	}
	if cfg.Key == "" {
		return fmt.Errorf("key name should not be empty")
	}
	if cfg.KeyringBackend == "" {
		return fmt.Errorf("the keyring backend should not be empty")
	}
	if cfg.AccountPrefix == "" {
		return fmt.Errorf("account prefix should not be empty")
	}

	hrp, _, err := bech32.DecodeAndConvert(cfg.ValidatorAddress)
	if err != nil {
		return fmt.Errorf("invalid validator address %q: %w", cfg.ValidatorAddress, err)
	}
	if !strings.HasPrefix(hrp, cfg.AccountPrefix) {
		return fmt.Errorf("validator address %q does not match the account prefix %s", cfg.ValidatorAddress, cfg.AccountPrefix)
	}

	if _, err := cfg.ParseFees(); err != nil {
		return err
	}
	if cfg.Gas == 0 {
		return fmt.Errorf("gas must be positive")
	}

	if err := types.BroadcastMode(cfg.BroadcastMode).Validate(); err != nil {
		return err
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}

	return nil
}

// ParseFees parses the comma separated fee coins. Zero amounts are kept as
// they are part of what gets signed.
func (cfg *ChainConfig) ParseFees() (sdk.Coins, error) {
	fees := sdk.Coins{}
	if strings.TrimSpace(cfg.Fees) == "" {
		return fees, nil
	}

	for _, s := range strings.Split(cfg.Fees, ",") {
		coin, err := sdk.ParseCoinNormalized(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid fees %q: %w", cfg.Fees, err)
		}
		fees = append(fees, coin)
	}

	return fees.Sort(), nil
}
