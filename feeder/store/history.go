package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/kvdb"
)

var (
	// mapping denom -> (period || kind) -> StoredSubmission
	submissionsBucketName = []byte("submissions")
)

// HistoryStore keeps an audit trail of the oracle messages accepted by the
// chain. It is never read back to rebuild the pending commits.
type HistoryStore struct {
	db kvdb.Backend
}

// NewHistoryStore returns a new store backed by db
func NewHistoryStore(db kvdb.Backend) (*HistoryStore, error) {
	s := &HistoryStore{db}
	if err := s.initBuckets(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *HistoryStore) initBuckets() error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		_, err := tx.CreateTopLevelBucket(submissionsBucketName)
		if err != nil {
			return fmt.Errorf("failed to create submissions bucket: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to initialize submission history buckets: %w", err)
	}

	return nil
}

// SaveSubmissions records all the submissions of a transaction atomically.
func (s *HistoryStore) SaveSubmissions(subs []*StoredSubmission) error {
	for _, sub := range subs {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("invalid submission: %w", err)
		}
	}

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(submissionsBucketName)
		if bucket == nil {
			return ErrCorruptedHistoryDB
		}

		for _, sub := range subs {
			denomBucket, err := bucket.CreateBucketIfNotExists([]byte(sub.Denom))
			if err != nil {
				return fmt.Errorf("failed to create bucket of %s: %w", sub.Denom, err)
			}

			if err := saveSubmission(denomBucket, sub); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to save submissions: %w", err)
	}

	return nil
}

func saveSubmission(denomBucket walletdb.ReadWriteBucket, sub *StoredSubmission) error {
	k := sub.key()
	if denomBucket.Get(k) != nil {
		return fmt.Errorf("%w: %s %s at period %d", ErrDuplicateSubmission, sub.Denom, sub.Kind, sub.Period)
	}

	marshalled, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	if err := denomBucket.Put(k, marshalled); err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}

	return nil
}

// ListSubmissions returns up to limit submissions of denom, latest first.
// A zero limit returns all of them.
func (s *HistoryStore) ListSubmissions(denom string, limit uint32) ([]*StoredSubmission, error) {
	var subs []*StoredSubmission

	err := kvdb.View(s.db, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(submissionsBucketName)
		if bucket == nil {
			return ErrCorruptedHistoryDB
		}

		denomBucket := bucket.NestedReadBucket([]byte(denom))
		if denomBucket == nil {
			return ErrDenomNotFound
		}

		c := denomBucket.ReadCursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var sub StoredSubmission
			if err := json.Unmarshal(v, &sub); err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptedHistoryDB, err)
			}
			subs = append(subs, &sub)

			if limit > 0 && uint32(len(subs)) == limit {
				break
			}
		}

		return nil
	}, func() {
		subs = nil
	})
	if err != nil {
		return nil, err
	}

	return subs, nil
}

// ListDenoms returns the denoms with at least one recorded submission.
func (s *HistoryStore) ListDenoms() ([]string, error) {
	var denoms []string

	err := kvdb.View(s.db, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(submissionsBucketName)
		if bucket == nil {
			return ErrCorruptedHistoryDB
		}

		return bucket.ForEach(func(k, v []byte) error {
			// nested buckets have no value
			if v == nil {
				denoms = append(denoms, string(k))
			}

			return nil
		})
	}, func() {
		denoms = nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(denoms)

	return denoms, nil
}
