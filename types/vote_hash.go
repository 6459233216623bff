package types

import (
	"encoding/hex"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/cometbft/cometbft/crypto/tmhash"
)

// VoteHashFunc computes the commitment published by a prevote. It must be
// deterministic: the chain recomputes it from the revealed vote.
type VoteHashFunc func(salt string, price sdkmath.LegacyDec, denom, validator string) string

// DefaultVoteHash hashes "salt:price:denom:validator" with the truncated
// SHA-256 used by the oracle module and hex encodes the result.
func DefaultVoteHash(salt string, price sdkmath.LegacyDec, denom, validator string) string {
	payload := fmt.Sprintf("%s:%s:%s:%s", salt, price.String(), denom, validator)

	return hex.EncodeToString(tmhash.SumTruncated([]byte(payload)))
}

// VoteHash recomputes the commitment a revealed vote corresponds to.
func (m *Vote) VoteHash(hashFn VoteHashFunc) string {
	return hashFn(m.Salt, m.ExchangeRate, m.Denom, m.Validator)
}
