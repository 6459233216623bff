package tx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/babylonlabs-io/oracle-feeder/types"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

var (
	ErrNoMessages   = errors.New("a transaction needs at least one message")
	ErrEmptySig     = errors.New("signature should not be empty")
	ErrNilAccount   = errors.New("account state is required to sign a transaction")
	ErrEmptyChainID = errors.New("chain id should not be empty")
)

// StdFee is the legacy amino fee. Gas is rendered as a decimal string.
type StdFee struct {
	Amount sdk.Coins `json:"amount"`
	Gas    string    `json:"gas"`
}

type PubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type StdSignature struct {
	PubKey    PubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

// UnsignedTx is a batch of oracle messages waiting for a signature.
type UnsignedTx struct {
	msgs    []types.OracleMessage
	encoded []json.RawMessage
	fee     StdFee
	memo    string
}

// SignedTx is the StdTx accepted by the LCD broadcast endpoint.
type SignedTx struct {
	Msg        []json.RawMessage `json:"msg"`
	Fee        StdFee            `json:"fee"`
	Signatures []StdSignature    `json:"signatures"`
	Memo       string            `json:"memo"`

	msgs []types.OracleMessage
}

type stdSignDoc struct {
	AccountNumber string            `json:"account_number"`
	ChainID       string            `json:"chain_id"`
	Fee           StdFee            `json:"fee"`
	Memo          string            `json:"memo"`
	Msgs          []json.RawMessage `json:"msgs"`
	Sequence      string            `json:"sequence"`
}

type broadcastReq struct {
	Tx   *SignedTx `json:"tx"`
	Mode string    `json:"mode"`
}

// BuildUnsignedTx assembles msgs, in order, into a single transaction.
func BuildUnsignedTx(msgs []types.OracleMessage, fee sdk.Coins, gas uint64, memo string) (*UnsignedTx, error) {
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}

	// one prevote and one vote per denom at most
	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		keys = append(keys, m.Type()+"/"+m.GetDenom())
	}
	if err := util.ValidateNoDuplicateDenoms(keys); err != nil {
		return nil, err
	}

	encoded := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		bz, err := m.AminoJSON()
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, bz)
	}

	if fee == nil {
		// amino renders an empty fee as [] rather than null
		fee = sdk.Coins{}
	}

	return &UnsignedTx{
		msgs:    msgs,
		encoded: encoded,
		fee:     StdFee{Amount: fee, Gas: strconv.FormatUint(gas, 10)},
		memo:    memo,
	}, nil
}

func (utx *UnsignedTx) Messages() []types.OracleMessage {
	return utx.msgs
}

// SignBytes returns the canonical (sorted, compact) JSON of the sign doc
// for the given chain and account state.
func (utx *UnsignedTx) SignBytes(chainID string, account *types.AccountState) ([]byte, error) {
	if chainID == "" {
		return nil, ErrEmptyChainID
	}
	if account == nil {
		return nil, ErrNilAccount
	}

	doc := stdSignDoc{
		AccountNumber: strconv.FormatUint(account.AccountNumber, 10),
		ChainID:       chainID,
		Fee:           utx.fee,
		Memo:          utx.memo,
		Msgs:          utx.encoded,
		Sequence:      strconv.FormatUint(account.Sequence, 10),
	}

	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign doc: %w", err)
	}

	return sdk.MustSortJSON(bz), nil
}

// NewSignedTx attaches sig to utx.
func NewSignedTx(utx *UnsignedTx, sig *types.Signature) (*SignedTx, error) {
	if sig == nil || len(sig.Signature) == 0 {
		return nil, ErrEmptySig
	}
	if len(sig.PubKeyBytes) == 0 {
		return nil, fmt.Errorf("public key of the signer should not be empty")
	}

	return &SignedTx{
		Msg: utx.encoded,
		Fee: utx.fee,
		Signatures: []StdSignature{{
			PubKey: PubKey{
				Type:  sig.PubKeyType,
				Value: base64.StdEncoding.EncodeToString(sig.PubKeyBytes),
			},
			Signature: base64.StdEncoding.EncodeToString(sig.Signature),
		}},
		Memo: utx.memo,
		msgs: utx.msgs,
	}, nil
}

func (stx *SignedTx) Messages() []types.OracleMessage {
	return stx.msgs
}

// BroadcastBody renders the request body of the LCD broadcast endpoint.
func (stx *SignedTx) BroadcastBody(mode types.BroadcastMode) ([]byte, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	bz, err := json.Marshal(broadcastReq{Tx: stx, Mode: string(mode)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast request: %w", err)
	}

	return bz, nil
}
