package clientcontroller

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/lcd"
)

// ErrBroadcastRejected is returned when the chain answers a broadcast with a
// non-zero code. The chain error is wrapped alongside it.
var ErrBroadcastRejected = lcd.ErrBroadcastRejected

var (
	// expectedErrs resolve by themselves once the sequence is refreshed
	// in the next iteration
	expectedErrs = []error{
		sdkerrors.ErrWrongSequence,
		sdkerrors.ErrMempoolIsFull,
		sdkerrors.ErrTxInMempoolCache,
	}
	// unrecoverableErrs need the operator to act
	unrecoverableErrs = []error{
		sdkerrors.ErrUnauthorized,
		sdkerrors.ErrInsufficientFunds,
		sdkerrors.ErrInsufficientFee,
		sdkerrors.ErrInvalidPubKey,
		sdkerrors.ErrUnknownAddress,
		sdkerrors.ErrInvalidChainID,
	}
)

func IsExpected(err error) bool {
	return err != nil && errorsmod.IsOf(err, expectedErrs...)
}

func IsUnrecoverable(err error) bool {
	return err != nil && errorsmod.IsOf(err, unrecoverableErrs...)
}

// IsSequenceMismatch tells whether the chain rejected a transaction because
// it was signed with a stale sequence.
func IsSequenceMismatch(err error) bool {
	return errors.Is(err, sdkerrors.ErrWrongSequence)
}

// FailureReason classifies a broadcast error for metrics labels
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case IsSequenceMismatch(err):
		return "sequence_mismatch"
	case IsUnrecoverable(err):
		return "unrecoverable"
	case errors.Is(err, ErrBroadcastRejected):
		return "rejected"
	default:
		return "network"
	}
}
