package api

import (
	"context"

	"github.com/babylonlabs-io/oracle-feeder/feeder/tx"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

// ChainReader answers the read-only questions the feeder asks the chain
// every iteration.
type ChainReader interface {
	// QueryLatestBlockHeight returns the height of the latest committed block
	QueryLatestBlockHeight(ctx context.Context) (uint64, error)

	// QueryAccount returns the account number and sequence of the given address.
	// A nil state and a nil error mean the account does not exist on chain yet.
	QueryAccount(ctx context.Context, address string) (*types.AccountState, error)
}

// Broadcaster submits signed transactions to the chain
type Broadcaster interface {
	// BroadcastTx submits the transaction and returns the chain response.
	// A transaction rejected by the chain yields an error, never a response.
	BroadcastTx(ctx context.Context, signed *tx.SignedTx, mode types.BroadcastMode) (*types.TxResponse, error)
}

type OracleController interface {
	ChainReader
	Broadcaster

	// Close cleanly shuts down the client
	Close() error
}
