package service

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.uber.org/zap"

	ccapi "github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/tx"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

// Submitter turns a batch of oracle messages into one signed transaction
// and broadcasts it.
type Submitter struct {
	bc     ccapi.Broadcaster
	signer types.Signer

	chainID string
	fees    sdk.Coins
	gas     uint64
	memo    string
	mode    types.BroadcastMode

	logger *zap.Logger
}

func NewSubmitter(cfg *config.ChainConfig, bc ccapi.Broadcaster, signer types.Signer, logger *zap.Logger) (*Submitter, error) {
	fees, err := cfg.ParseFees()
	if err != nil {
		return nil, err
	}

	mode := types.BroadcastMode(cfg.BroadcastMode)
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	return &Submitter{
		bc:      bc,
		signer:  signer,
		chainID: cfg.ChainID,
		fees:    fees,
		gas:     cfg.Gas,
		memo:    cfg.Memo,
		mode:    mode,
		logger:  logger.With(zap.String("module", "submitter")),
	}, nil
}

// Submit signs msgs with the given account state and broadcasts them. The
// account sequence is left to the caller.
func (s *Submitter) Submit(ctx context.Context, msgs []types.OracleMessage, account *types.AccountState) (*types.TxResponse, error) {
	utx, err := tx.BuildUnsignedTx(msgs, s.fees, s.gas, s.memo)
	if err != nil {
		return nil, err
	}

	signBytes, err := utx.SignBytes(s.chainID, account)
	if err != nil {
		return nil, err
	}

	sig, err := s.signer.Sign(ctx, signBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	signed, err := tx.NewSignedTx(utx, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	s.logger.Debug("broadcasting oracle transaction",
		zap.Int("num_msgs", len(msgs)),
		zap.Uint64("sequence", account.Sequence))

	return s.bc.BroadcastTx(ctx, signed, s.mode)
}
