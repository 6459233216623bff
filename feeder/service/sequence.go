package service

import (
	"context"
	"fmt"

	ccapi "github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

// SequenceManager caches the account sequence for the duration of one
// iteration. It is refreshed from the chain at the start of every iteration
// and only advanced after a broadcast the chain accepted.
type SequenceManager struct {
	reader  ccapi.ChainReader
	address string

	account *types.AccountState
}

func NewSequenceManager(reader ccapi.ChainReader, address string) *SequenceManager {
	return &SequenceManager{reader: reader, address: address}
}

func (sm *SequenceManager) Refresh(ctx context.Context) error {
	account, err := sm.reader.QueryAccount(ctx, sm.address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChainQuery, err)
	}
	if account == nil {
		sm.account = nil

		return fmt.Errorf("%w: %s", ErrAccountNotFound, sm.address)
	}

	sm.account = &types.AccountState{
		Address:       sm.address,
		AccountNumber: account.AccountNumber,
		Sequence:      account.Sequence,
	}

	return nil
}

// Current returns a copy of the cached account state, nil before the first
// successful refresh.
func (sm *SequenceManager) Current() *types.AccountState {
	if sm.account == nil {
		return nil
	}
	acc := *sm.account

	return &acc
}

func (sm *SequenceManager) Increment() {
	if sm.account != nil {
		sm.account.Sequence++
	}
}
