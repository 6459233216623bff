package types

import "fmt"

// TxResponse is the outcome of a broadcast accepted by the chain.
// Height is zero for sync broadcasts that are not yet committed.
type TxResponse struct {
	TxHash string
	Height uint64
	RawLog string
}

type BroadcastMode string

const (
	BroadcastModeSync  BroadcastMode = "sync"
	BroadcastModeBlock BroadcastMode = "block"
)

func (m BroadcastMode) Validate() error {
	switch m {
	case BroadcastModeSync, BroadcastModeBlock:
		return nil
	default:
		return fmt.Errorf("unsupported broadcast mode %q", string(m))
	}
}
