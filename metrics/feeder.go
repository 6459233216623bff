package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/babylonlabs-io/oracle-feeder/types"
)

const (
	TxTypePrevote = "prevote"
	TxTypeVote    = "vote"
)

type FeederMetrics struct {
	registry *prometheus.Registry

	lastPolledHeight   prometheus.Gauge
	votePeriod         prometheus.Gauge
	prices             *prometheus.GaugeVec
	pendingCommits     prometheus.Gauge
	accountSequence    prometheus.Gauge
	submittedTxs       *prometheus.CounterVec
	failedTxs          *prometheus.CounterVec
	submittedMsgs      *prometheus.CounterVec
	lastSubmissionTime *prometheus.GaugeVec
	sourceFailures     *prometheus.CounterVec
	skippedIterations  *prometheus.CounterVec
	heightRegressions  prometheus.Gauge
	expiredCommits     *prometheus.CounterVec
	iterationDuration  prometheus.Histogram
}

// NewFeederMetrics registers the feeder metrics on a fresh registry so that
// several instances can coexist in one process.
func NewFeederMetrics() *FeederMetrics {
	reg := prometheus.NewRegistry()

	m := &FeederMetrics{
		registry: reg,
		lastPolledHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_last_polled_height",
			Help: "The last block height read from the oracle chain",
		}),
		votePeriod: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_vote_period",
			Help: "The current vote period derived from the last polled height",
		}),
		prices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feeder_observed_price",
			Help: "The last aggregated price per currency",
		}, []string{"currency"}),
		pendingCommits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_pending_commits",
			Help: "The number of prevotes awaiting their reveal",
		}),
		accountSequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_account_sequence",
			Help: "The account sequence after the last iteration",
		}),
		submittedTxs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_submitted_txs_total",
			Help: "The number of transactions accepted by the chain",
		}, []string{"type"}),
		failedTxs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_failed_txs_total",
			Help: "The number of transactions that failed to be signed or broadcast",
		}, []string{"type", "reason"}),
		submittedMsgs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_submitted_msgs_total",
			Help: "The number of oracle messages accepted by the chain per denom",
		}, []string{"type", "denom"}),
		lastSubmissionTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feeder_last_submission_timestamp_seconds",
			Help: "The unix time of the last accepted transaction",
		}, []string{"type"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_source_failures_total",
			Help: "The number of failed price source requests",
		}, []string{"source"}),
		skippedIterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_skipped_iterations_total",
			Help: "The number of iterations that ended without voting",
		}, []string{"reason"}),
		heightRegressions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_height_regressions",
			Help: "The number of consecutive iterations that read a block height lower than the last accepted one",
		}),
		expiredCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_expired_commits_total",
			Help: "The number of prevotes dropped because their reveal period passed",
		}, []string{"denom"}),
		iterationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feeder_iteration_duration_seconds",
			Help:    "The duration of one voting iteration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	reg.MustRegister(
		m.lastPolledHeight,
		m.votePeriod,
		m.prices,
		m.pendingCommits,
		m.accountSequence,
		m.submittedTxs,
		m.failedTxs,
		m.submittedMsgs,
		m.lastSubmissionTime,
		m.sourceFailures,
		m.skippedIterations,
		m.heightRegressions,
		m.expiredCommits,
		m.iterationDuration,
	)

	return m
}

func (m *FeederMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *FeederMetrics) RecordPollerHeight(info types.VotePeriodInfo) {
	m.lastPolledHeight.Set(float64(info.Height))
	m.votePeriod.Set(float64(info.Period))
}

func (m *FeederMetrics) RecordPrices(prices types.PriceObservation) {
	for currency, price := range prices {
		f, err := price.Float64()
		if err != nil {
			continue
		}
		m.prices.WithLabelValues(currency).Set(f)
	}
}

func (m *FeederMetrics) RecordPendingCommits(n int) {
	m.pendingCommits.Set(float64(n))
}

func (m *FeederMetrics) RecordAccountSequence(seq uint64) {
	m.accountSequence.Set(float64(seq))
}

func (m *FeederMetrics) RecordSubmittedTx(txType string, msgs []types.OracleMessage) {
	m.submittedTxs.WithLabelValues(txType).Inc()
	m.lastSubmissionTime.WithLabelValues(txType).SetToCurrentTime()
	for _, msg := range msgs {
		m.submittedMsgs.WithLabelValues(txType, msg.GetDenom()).Inc()
	}
}

func (m *FeederMetrics) IncrementFailedTx(txType, reason string) {
	m.failedTxs.WithLabelValues(txType, reason).Inc()
}

func (m *FeederMetrics) IncrementSourceFailures(source string) {
	m.sourceFailures.WithLabelValues(source).Inc()
}

func (m *FeederMetrics) IncrementSkippedIterations(reason string) {
	m.skippedIterations.WithLabelValues(reason).Inc()
}

func (m *FeederMetrics) ObserveIterationDuration(d time.Duration) {
	m.iterationDuration.Observe(d.Seconds())
}

func (m *FeederMetrics) IncrementExpiredCommits(denom string) {
	m.expiredCommits.WithLabelValues(denom).Inc()
}

func (m *FeederMetrics) RecordHeightRegressions(n uint32) {
	m.heightRegressions.Set(float64(n))
}
