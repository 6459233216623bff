package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

const saltBytes = 2

// SaltFunc draws the salt of a new prevote.
type SaltFunc func() (string, error)

// DefaultSalt returns 4 random hex characters.
func DefaultSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to draw salt: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// VotePlan is what one iteration intends to submit. Reveals and prevotes are
// kept apart because they are broadcast as two transactions.
type VotePlan struct {
	Info     types.VotePeriodInfo
	Reveals  []*types.Vote
	Prevotes []*types.Prevote

	// currencies of Reveals and Prevotes, index aligned
	revealCurrencies  []string
	prevoteCurrencies []string

	// currency -> commit revealed by this plan
	revealed map[string]types.PendingCommit
	// currency -> commit to record once the prevotes are accepted
	candidates map[string]types.PendingCommit
}

func (p *VotePlan) IsEmpty() bool {
	return len(p.Reveals) == 0 && len(p.Prevotes) == 0
}

func (p *VotePlan) RevealMessages() []types.OracleMessage {
	msgs := make([]types.OracleMessage, 0, len(p.Reveals))
	for _, v := range p.Reveals {
		msgs = append(msgs, v)
	}

	return msgs
}

func (p *VotePlan) PrevoteMessages() []types.OracleMessage {
	msgs := make([]types.OracleMessage, 0, len(p.Prevotes))
	for _, v := range p.Prevotes {
		msgs = append(msgs, v)
	}

	return msgs
}

// Candidate returns the commit a prevote of this plan would record.
func (p *VotePlan) Candidate(currency string) (types.PendingCommit, bool) {
	c, ok := p.candidates[types.NormalizeCurrency(currency)]

	return c, ok
}

// CommitRevealScheduler owns the pending commits of the feeder. It is driven
// by the voting loop only and is not safe for concurrent use.
type CommitRevealScheduler struct {
	feeder    string
	validator string
	filter    *types.DenomFilter
	saltFn    SaltFunc
	hashFn    types.VoteHashFunc

	// currency -> prevote accepted by the chain and not revealed yet
	pending map[string]types.PendingCommit

	metrics *metrics.FeederMetrics
	logger  *zap.Logger
}

func NewCommitRevealScheduler(
	feeder, validator string,
	filter *types.DenomFilter,
	saltFn SaltFunc,
	hashFn types.VoteHashFunc,
	metrics *metrics.FeederMetrics,
	logger *zap.Logger,
) *CommitRevealScheduler {
	if saltFn == nil {
		saltFn = DefaultSalt
	}
	if hashFn == nil {
		hashFn = types.DefaultVoteHash
	}

	return &CommitRevealScheduler{
		feeder:    feeder,
		validator: validator,
		filter:    filter,
		saltFn:    saltFn,
		hashFn:    hashFn,
		pending:   make(map[string]types.PendingCommit),
		metrics:   metrics,
		logger:    logger.With(zap.String("module", "scheduler")),
	}
}

// Plan decides which pending commits to reveal and which prices to commit
// for the period described by info. It does not change the pending commits;
// call ExpireStale first to drop the ones that can no longer be revealed.
func (s *CommitRevealScheduler) Plan(info types.VotePeriodInfo, prices types.PriceObservation) (*VotePlan, error) {
	plan := &VotePlan{
		Info:       info,
		revealed:   make(map[string]types.PendingCommit),
		candidates: make(map[string]types.PendingCommit),
	}

	for _, currency := range s.pendingCurrencies() {
		commit := s.pending[currency]
		// a reveal must land in a period after the one the prevote was committed in
		if commit.Period >= info.Period {
			continue
		}

		vote, err := types.NewVote(commit.Price, commit.Salt, types.OracleDenom(currency), s.feeder, s.validator)
		if err != nil {
			s.logger.Error("skipping malformed reveal",
				zap.String("currency", currency),
				zap.Uint64("commit_period", commit.Period),
				zap.Error(err))

			continue
		}
		plan.Reveals = append(plan.Reveals, vote)
		plan.revealCurrencies = append(plan.revealCurrencies, currency)
		plan.revealed[currency] = commit
	}

	if !info.PrevoteWindow {
		return plan, nil
	}

	for _, currency := range prices.Currencies() {
		if !s.filter.Allows(currency) {
			continue
		}
		if commit, ok := s.pending[currency]; ok && commit.Period >= info.Period {
			// already committed in this period
			continue
		}

		price := prices[currency]
		if price.IsNil() || !price.IsPositive() {
			s.logger.Warn("skipping non-positive price", zap.String("currency", currency))

			continue
		}

		salt, err := s.saltFn()
		if err != nil {
			return nil, err
		}

		denom := types.OracleDenom(currency)
		hash := s.hashFn(salt, price, denom, s.validator)
		prevote, err := types.NewPrevote(hash, denom, s.feeder, s.validator)
		if err != nil {
			return nil, fmt.Errorf("failed to build prevote of %s: %w", denom, err)
		}

		plan.Prevotes = append(plan.Prevotes, prevote)
		plan.prevoteCurrencies = append(plan.prevoteCurrencies, currency)
		plan.candidates[currency] = types.PendingCommit{
			Price:  price,
			Salt:   salt,
			Hash:   hash,
			Period: info.Period,
		}
	}

	return plan, nil
}

// ConfirmReveal clears the commits revealed by plan. Call it only after the
// reveal transaction was accepted.
func (s *CommitRevealScheduler) ConfirmReveal(plan *VotePlan) {
	for currency, commit := range plan.revealed {
		current, ok := s.pending[currency]
		if ok && current.Hash == commit.Hash {
			delete(s.pending, currency)
		}
	}
	s.recordPending()
}

// ConfirmPrevote records the candidates of plan as pending commits. Call it
// only after the prevote transaction was accepted. committedPeriod is the
// vote period of the block that included the prevote; it is never lower
// than the planned period. A pending commit is only replaced when this plan
// revealed it or tried to.
func (s *CommitRevealScheduler) ConfirmPrevote(plan *VotePlan, committedPeriod uint64) {
	for currency, candidate := range plan.candidates {
		if current, ok := s.pending[currency]; ok {
			attempted, wasRevealed := plan.revealed[currency]
			if !wasRevealed || attempted.Hash != current.Hash {
				s.logger.Warn("keeping the unrevealed commit",
					zap.String("currency", currency),
					zap.Uint64("commit_period", current.Period))

				continue
			}
			// a successful reveal would have cleared it already
			s.logger.Info("abandoning the commit whose reveal failed",
				zap.String("currency", currency),
				zap.Uint64("commit_period", current.Period))
		}
		if committedPeriod > candidate.Period {
			s.logger.Info("prevote was included in a later period",
				zap.String("currency", currency),
				zap.Uint64("planned_period", candidate.Period),
				zap.Uint64("committed_period", committedPeriod))
			candidate.Period = committedPeriod
		}
		s.pending[currency] = candidate
	}
	s.recordPending()
}

// Pending returns the pending commit of currency.
func (s *CommitRevealScheduler) Pending(currency string) (types.PendingCommit, bool) {
	c, ok := s.pending[types.NormalizeCurrency(currency)]

	return c, ok
}

func (s *CommitRevealScheduler) PendingCount() int {
	return len(s.pending)
}

// SetPending records a commit directly. The voting loop never calls it; it
// exists to seed the state.
func (s *CommitRevealScheduler) SetPending(currency string, commit types.PendingCommit) error {
	if err := commit.Validate(); err != nil {
		return err
	}
	s.pending[types.NormalizeCurrency(currency)] = commit

	return nil
}

// ExpireStale drops commits that can no longer be revealed: the oracle only
// accepts the reveal in the period right after the prevote.
func (s *CommitRevealScheduler) ExpireStale(period uint64) int {
	return s.drop(func(commit types.PendingCommit) bool {
		return commit.Period+1 < period
	}, period, "dropping a commit whose reveal period has passed")
}

// DiscardNewerThan drops commits recorded for a period after period. It is
// used when the chain height moved back for good.
func (s *CommitRevealScheduler) DiscardNewerThan(period uint64) int {
	return s.drop(func(commit types.PendingCommit) bool {
		return commit.Period > period
	}, period, "dropping a commit made ahead of the chain")
}

func (s *CommitRevealScheduler) drop(match func(types.PendingCommit) bool, period uint64, msg string) int {
	dropped := 0
	for currency, commit := range s.pending {
		if !match(commit) {
			continue
		}

		s.logger.Warn(msg,
			zap.String("currency", currency),
			zap.Uint64("commit_period", commit.Period),
			zap.Uint64("current_period", period))
		delete(s.pending, currency)
		dropped++
		if s.metrics != nil {
			s.metrics.IncrementExpiredCommits(types.OracleDenom(currency))
		}
	}
	s.recordPending()

	return dropped
}

func (s *CommitRevealScheduler) pendingCurrencies() []string {
	currencies := make([]string, 0, len(s.pending))
	for c := range s.pending {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	return currencies
}

func (s *CommitRevealScheduler) recordPending() {
	if s.metrics != nil {
		s.metrics.RecordPendingCommits(len(s.pending))
	}
}
