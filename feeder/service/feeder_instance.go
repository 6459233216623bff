package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller"
	ccapi "github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/store"
	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

const (
	skipReasonNoPrices = "no_prices"
	skipReasonNothing  = "nothing_to_submit"
)

// TxOutcome is the result of one of the two transactions of an iteration.
type TxOutcome struct {
	Messages []types.OracleMessage
	Sequence uint64
	Response *types.TxResponse
	Err      error
}

func (o *TxOutcome) Succeeded() bool {
	return o != nil && o.Err == nil
}

// IterationResult summarizes one pass of the voting loop.
type IterationResult struct {
	Info       types.VotePeriodInfo
	SkipReason string
	Reveal     *TxOutcome
	Prevote    *TxOutcome
}

func (r *IterationResult) Skipped() bool {
	return r.SkipReason != ""
}

// FeederInstance runs the voting loop: one iteration reveals the commits of
// the previous period and commits the fresh prices of the current one.
type FeederInstance struct {
	cfg *config.VotingConfig

	fetcher   types.PriceFetcher
	reader    ccapi.ChainReader
	tracker   *PeriodTracker
	scheduler *CommitRevealScheduler
	sequence  *SequenceManager
	submitter *Submitter
	history   *store.HistoryStore

	metrics *metrics.FeederMetrics
	logger  *zap.Logger

	isStarted *atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	quit      chan struct{}
}

func NewFeederInstance(
	cfg *config.VotingConfig,
	fetcher types.PriceFetcher,
	reader ccapi.ChainReader,
	tracker *PeriodTracker,
	scheduler *CommitRevealScheduler,
	sequence *SequenceManager,
	submitter *Submitter,
	history *store.HistoryStore,
	metrics *metrics.FeederMetrics,
	logger *zap.Logger,
) *FeederInstance {
	return &FeederInstance{
		cfg:       cfg,
		fetcher:   fetcher,
		reader:    reader,
		tracker:   tracker,
		scheduler: scheduler,
		sequence:  sequence,
		submitter: submitter,
		history:   history,
		metrics:   metrics,
		logger:    logger.With(zap.String("module", "feeder_instance")),
		isStarted: atomic.NewBool(false),
	}
}

func (fi *FeederInstance) Start(ctx context.Context) error {
	if fi.isStarted.Swap(true) {
		return fmt.Errorf("the feeder instance is already started")
	}

	fi.logger.Info("starting the feeder instance",
		zap.Uint64("vote_period", fi.tracker.PeriodLength()),
		zap.Duration("loop_interval", fi.cfg.LoopInterval))

	loopCtx, cancel := context.WithCancel(ctx)
	fi.cancel = cancel
	fi.quit = make(chan struct{})

	fi.wg.Add(1)
	go fi.votingLoop(loopCtx)

	return nil
}

func (fi *FeederInstance) Stop() error {
	if !fi.isStarted.Swap(false) {
		return fmt.Errorf("the feeder instance has already stopped")
	}

	fi.logger.Info("stopping the feeder instance")

	close(fi.quit)
	fi.cancel()
	fi.wg.Wait()

	fi.logger.Info("the feeder instance is successfully stopped")

	return nil
}

func (fi *FeederInstance) IsRunning() bool {
	return fi.isStarted.Load()
}

func (fi *FeederInstance) votingLoop(ctx context.Context) {
	defer fi.wg.Done()

	for {
		start := time.Now()
		if _, err := fi.safeIteration(ctx); err != nil {
			fi.logger.Error("voting iteration failed", zap.Error(err))
		}
		elapsed := time.Since(start)
		fi.metrics.ObserveIterationDuration(elapsed)

		timer := time.NewTimer(NextDelay(fi.cfg.LoopInterval, fi.cfg.MinLoopInterval, elapsed))
		select {
		case <-timer.C:
		case <-fi.quit:
			timer.Stop()
			fi.logger.Info("the voting loop is closing")

			return
		case <-ctx.Done():
			timer.Stop()
			fi.logger.Info("the voting loop is closing", zap.Error(ctx.Err()))

			return
		}
	}
}

// NextDelay returns the pause before the next iteration so that iterations
// start every loopInterval, but never less than minInterval apart.
func NextDelay(loopInterval, minInterval, elapsed time.Duration) time.Duration {
	delay := loopInterval - elapsed
	if delay < minInterval {
		return minInterval
	}

	return delay
}

// safeIteration keeps a panic inside one iteration from killing the loop
func (fi *FeederInstance) safeIteration(ctx context.Context) (res *IterationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrIterationPanicked, r)
		}
	}()

	return fi.RunIteration(ctx)
}

// RunIteration performs one complete pass: prices, chain state, plan,
// reveal transaction, prevote transaction. Transaction failures are reported
// in the result; an error means the iteration stopped before submitting.
func (fi *FeederInstance) RunIteration(ctx context.Context) (*IterationResult, error) {
	prices, err := fi.fetcher.FetchPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(prices) == 0 {
		fi.logger.Warn("no price available, skipping the iteration")
		fi.metrics.IncrementSkippedIterations(skipReasonNoPrices)

		return &IterationResult{SkipReason: skipReasonNoPrices}, nil
	}

	height, err := fi.reader.QueryLatestBlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainQuery, err)
	}

	info, err := fi.observeHeight(height)
	if err != nil {
		return nil, err
	}
	fi.metrics.RecordPollerHeight(info)
	fi.scheduler.ExpireStale(info.Period)

	if err := fi.sequence.Refresh(ctx); err != nil {
		return nil, err
	}

	plan, err := fi.scheduler.Plan(info, prices)
	if err != nil {
		return nil, fmt.Errorf("failed to plan the votes of period %d: %w", info.Period, err)
	}

	res := &IterationResult{Info: info}
	if plan.IsEmpty() {
		fi.logger.Debug("nothing to submit",
			zap.Uint64("height", info.Height),
			zap.Uint64("period", info.Period),
			zap.Bool("prevote_window", info.PrevoteWindow))
		fi.metrics.IncrementSkippedIterations(skipReasonNothing)
		res.SkipReason = skipReasonNothing

		return res, nil
	}

	if len(plan.Reveals) > 0 {
		res.Reveal = fi.submit(ctx, metrics.TxTypeVote, plan.RevealMessages())
		if res.Reveal.Succeeded() {
			fi.scheduler.ConfirmReveal(plan)
			fi.recordHistory(plan, res.Reveal, store.KindVote)
		}
	}

	if len(plan.Prevotes) > 0 {
		res.Prevote = fi.submit(ctx, metrics.TxTypePrevote, plan.PrevoteMessages())
		if res.Prevote.Succeeded() {
			fi.scheduler.ConfirmPrevote(plan, fi.committedPeriod(info, res.Prevote.Response))
			fi.recordHistory(plan, res.Prevote, store.KindPrevote)
		}
	}

	if acc := fi.sequence.Current(); acc != nil {
		fi.metrics.RecordAccountSequence(acc.Sequence)
	}

	return res, nil
}

// observeHeight feeds height to the period tracker. After
// HeightRegressionLimit rejected heights in a row the lower height becomes the
// reference, and commits made for later periods are dropped.
func (fi *FeederInstance) observeHeight(height uint64) (types.VotePeriodInfo, error) {
	info, err := fi.tracker.Observe(height)
	regressions := fi.tracker.Regressions()
	fi.metrics.RecordHeightRegressions(regressions)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, ErrHeightRegressed) || regressions < fi.cfg.HeightRegressionLimit {
		return types.VotePeriodInfo{}, err
	}

	fi.logger.Warn("accepting a lower block height",
		zap.Uint64("last_height", fi.tracker.LastHeight()),
		zap.Uint64("height", height),
		zap.Uint32("regressions", regressions))
	info = fi.tracker.Rebase(height)
	fi.metrics.RecordHeightRegressions(0)
	fi.scheduler.DiscardNewerThan(info.Period)

	return info, nil
}

// committedPeriod is the vote period of the block that included a prevote.
// A sync broadcast reports no height, so the planned period is used then.
func (fi *FeederInstance) committedPeriod(info types.VotePeriodInfo, resp *types.TxResponse) uint64 {
	if resp == nil || resp.Height == 0 {
		return info.Period
	}

	return fi.tracker.VotePeriod(resp.Height)
}

func (fi *FeederInstance) submit(ctx context.Context, txType string, msgs []types.OracleMessage) *TxOutcome {
	account := fi.sequence.Current()
	outcome := &TxOutcome{Messages: msgs, Sequence: account.Sequence}

	outcome.Response, outcome.Err = fi.submitter.Submit(ctx, msgs, account)
	if outcome.Err != nil {
		reason := clientcontroller.FailureReason(outcome.Err)
		if errors.Is(outcome.Err, ErrSigning) {
			reason = "signing"
		}
		fi.metrics.IncrementFailedTx(txType, reason)

		logFn := fi.logger.Error
		if clientcontroller.IsExpected(outcome.Err) {
			logFn = fi.logger.Warn
		}
		logFn("failed to submit oracle transaction",
			zap.String("type", txType),
			zap.Int("num_msgs", len(msgs)),
			zap.Uint64("sequence", account.Sequence),
			zap.String("reason", reason),
			zap.Error(outcome.Err))

		return outcome
	}

	fi.sequence.Increment()
	fi.metrics.RecordSubmittedTx(txType, msgs)
	fi.logger.Info("oracle transaction accepted",
		zap.String("type", txType),
		zap.Int("num_msgs", len(msgs)),
		zap.String("tx_hash", outcome.Response.TxHash),
		zap.Uint64("height", outcome.Response.Height))

	return outcome
}

func (fi *FeederInstance) recordHistory(plan *VotePlan, outcome *TxOutcome, kind store.SubmissionKind) {
	if fi.history == nil {
		return
	}

	now := time.Now().UTC()
	subs := make([]*store.StoredSubmission, 0, len(outcome.Messages))
	switch kind {
	case store.KindVote:
		for i, v := range plan.Reveals {
			commit := plan.revealed[plan.revealCurrencies[i]]
			subs = append(subs, &store.StoredSubmission{
				Denom:  v.Denom,
				Kind:   store.KindVote,
				Period: commit.Period,
				Price:  v.ExchangeRate.String(),
				Salt:   v.Salt,
				Hash:   commit.Hash,
				TxHash: outcome.Response.TxHash,
				Height: outcome.Response.Height,
				Time:   now,
			})
		}
	case store.KindPrevote:
		for i, p := range plan.Prevotes {
			candidate := plan.candidates[plan.prevoteCurrencies[i]]
			subs = append(subs, &store.StoredSubmission{
				Denom:  p.Denom,
				Kind:   store.KindPrevote,
				Period: candidate.Period,
				Price:  candidate.Price.String(),
				Hash:   p.Hash,
				TxHash: outcome.Response.TxHash,
				Height: outcome.Response.Height,
				Time:   now,
			})
		}
	}

	if err := fi.history.SaveSubmissions(subs); err != nil {
		fi.logger.Warn("failed to record the submission history", zap.Error(err))
	}
}
