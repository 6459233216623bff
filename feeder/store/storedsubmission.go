package store

import (
	"encoding/binary"
	"fmt"
	"time"
)

type SubmissionKind string

const (
	KindPrevote SubmissionKind = "prevote"
	KindVote    SubmissionKind = "vote"
)

// StoredSubmission is one oracle message accepted by the chain. Prevotes and
// the votes revealing them share the commit period, so both sit next to each
// other in the denom bucket.
type StoredSubmission struct {
	Denom  string         `json:"denom"`
	Kind   SubmissionKind `json:"kind"`
	Period uint64         `json:"period"`
	Price  string         `json:"price,omitempty"`
	Salt   string         `json:"salt,omitempty"`
	Hash   string         `json:"hash,omitempty"`
	TxHash string         `json:"tx_hash"`
	Height uint64         `json:"height"`
	Time   time.Time      `json:"time"`
}

func (s *StoredSubmission) Validate() error {
	if s.Denom == "" {
		return fmt.Errorf("denom should not be empty")
	}
	switch s.Kind {
	case KindPrevote:
		if s.Hash == "" {
			return fmt.Errorf("prevote of %s should carry a hash", s.Denom)
		}
	case KindVote:
		if s.Price == "" || s.Salt == "" {
			return fmt.Errorf("vote of %s should carry the price and the salt", s.Denom)
		}
	default:
		return fmt.Errorf("unknown submission kind %q", s.Kind)
	}

	return nil
}

// key orders submissions by commit period, prevote before vote
func (s *StoredSubmission) key() []byte {
	k := make([]byte, 9)
	binary.BigEndian.PutUint64(k, s.Period)
	if s.Kind == KindVote {
		k[8] = 1
	}

	return k
}
