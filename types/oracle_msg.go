package types

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/types/bech32"
)

const (
	MsgTypePrevote = "oracle/MsgExchangeRatePrevote"
	MsgTypeVote    = "oracle/MsgExchangeRateVote"
)

// OracleMessage is either a *Prevote or a *Vote. The set is closed: both
// implementations live in this package and are validated when constructed.
type OracleMessage interface {
	isOracleMessage()
	// Type returns the amino route of the message.
	Type() string
	GetDenom() string
	// AminoJSON returns the {"type":..., "value":...} rendering used in sign docs.
	AminoJSON() (json.RawMessage, error)
}

var (
	_ OracleMessage = (*Prevote)(nil)
	_ OracleMessage = (*Vote)(nil)
)

// Prevote commits to a price without revealing it.
type Prevote struct {
	Hash      string `json:"hash"`
	Denom     string `json:"denom"`
	Feeder    string `json:"feeder"`
	Validator string `json:"validator"`
}

// Vote reveals a price committed by an earlier Prevote.
type Vote struct {
	ExchangeRate sdkmath.LegacyDec `json:"exchange_rate"`
	Salt         string            `json:"salt"`
	Denom        string            `json:"denom"`
	Feeder       string            `json:"feeder"`
	Validator    string            `json:"validator"`
}

func NewPrevote(hash, denom, feeder, validator string) (*Prevote, error) {
	if hash == "" {
		return nil, fmt.Errorf("prevote hash should not be empty")
	}
	if err := validateParticipants(denom, feeder, validator); err != nil {
		return nil, err
	}

	return &Prevote{Hash: hash, Denom: denom, Feeder: feeder, Validator: validator}, nil
}

func NewVote(price sdkmath.LegacyDec, salt, denom, feeder, validator string) (*Vote, error) {
	if price.IsNil() || !price.IsPositive() {
		return nil, fmt.Errorf("vote price must be positive, got %v", price)
	}
	if salt == "" {
		return nil, fmt.Errorf("vote salt should not be empty")
	}
	if err := validateParticipants(denom, feeder, validator); err != nil {
		return nil, err
	}

	return &Vote{ExchangeRate: price, Salt: salt, Denom: denom, Feeder: feeder, Validator: validator}, nil
}

func validateParticipants(denom, feeder, validator string) error {
	if denom == "" {
		return fmt.Errorf("denom should not be empty")
	}
	if _, _, err := bech32.DecodeAndConvert(feeder); err != nil {
		return fmt.Errorf("invalid feeder address %q: %w", feeder, err)
	}
	if _, _, err := bech32.DecodeAndConvert(validator); err != nil {
		return fmt.Errorf("invalid validator address %q: %w", validator, err)
	}

	return nil
}

func (*Prevote) isOracleMessage() {}

func (*Prevote) Type() string { return MsgTypePrevote }

func (m *Prevote) GetDenom() string { return m.Denom }

func (m *Prevote) AminoJSON() (json.RawMessage, error) {
	return wrapAmino(MsgTypePrevote, m)
}

func (*Vote) isOracleMessage() {}

func (*Vote) Type() string { return MsgTypeVote }

func (m *Vote) GetDenom() string { return m.Denom }

func (m *Vote) AminoJSON() (json.RawMessage, error) {
	return wrapAmino(MsgTypeVote, m)
}

func wrapAmino(msgType string, value interface{}) (json.RawMessage, error) {
	bz, err := json.Marshal(struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	}{Type: msgType, Value: value})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msgType, err)
	}

	return bz, nil
}
