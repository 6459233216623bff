package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// PendingCommit is a prevote that was broadcast successfully and still awaits
// its reveal. Price and Salt must be revealed exactly as they were hashed.
type PendingCommit struct {
	Price  sdkmath.LegacyDec
	Salt   string
	Hash   string
	Period uint64
}

func (pc *PendingCommit) Validate() error {
	if pc == nil {
		return fmt.Errorf("pending commit is nil")
	}
	if pc.Salt == "" {
		return fmt.Errorf("empty salt")
	}
	if pc.Price.IsNil() || !pc.Price.IsPositive() {
		return fmt.Errorf("invalid committed price %v", pc.Price)
	}

	return nil
}
