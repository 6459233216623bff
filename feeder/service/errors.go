package service

import (
	"errors"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller"
)

var (
	ErrSourceUnavailable   = errors.New("no price source is available")
	ErrChainQuery          = errors.New("failed to query the oracle chain")
	ErrSigning             = errors.New("failed to sign the transaction")
	ErrBroadcastRejected   = clientcontroller.ErrBroadcastRejected
	ErrAccountNotFound     = errors.New("the feeder account does not exist on chain")
	ErrHeightRegressed     = errors.New("the observed block height went backwards")
	ErrInvalidPeriodLength = errors.New("the vote period must be at least 2 blocks")
	ErrIterationPanicked   = errors.New("the voting iteration panicked")
)
