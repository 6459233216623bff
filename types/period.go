package types

// VotePeriodInfo describes where a block height falls in the oracle's voting
// schedule.
type VotePeriodInfo struct {
	Height        uint64
	Period        uint64
	PrevoteWindow bool
}
