package types

// AccountState is the signing metadata of the feeder account.
type AccountState struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}
