package priceprovider

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

var _ types.PriceFetcher = (*Aggregator)(nil)

// Aggregator queries all sources concurrently and keeps the observation of the
// first source that answers successfully. Observations of different sources
// are never combined.
type Aggregator struct {
	sources []string
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.FeederMetrics
}

type sourceResult struct {
	source string
	prices types.PriceObservation
	err    error
}

func NewAggregator(cfg *Config, logger *zap.Logger, m *metrics.FeederMetrics) *Aggregator {
	return NewAggregatorWithClient(cfg.Sources, &http.Client{Timeout: cfg.Timeout}, logger, m)
}

func NewAggregatorWithClient(sources []string, client *http.Client, logger *zap.Logger, m *metrics.FeederMetrics) *Aggregator {
	return &Aggregator{
		sources: sources,
		client:  client,
		logger:  logger.With(zap.String("module", "price_aggregator")),
		metrics: m,
	}
}

// FetchPrices never fails because of unreachable sources: when every source
// fails the returned observation is empty.
func (a *Aggregator) FetchPrices(ctx context.Context) (types.PriceObservation, error) {
	if len(a.sources) == 0 {
		return types.PriceObservation{}, nil
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so that losers never block after the winner returns
	results := make(chan sourceResult, len(a.sources))
	for _, s := range a.sources {
		go func(source string) {
			prices, err := fetchSource(raceCtx, a.client, source)
			results <- sourceResult{source: source, prices: prices, err: err}
		}(s)
	}

	for range a.sources {
		var res sourceResult
		select {
		case res = <-results:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if res.err != nil {
			a.logger.Warn("failed to fetch prices from source",
				zap.String("source", res.source),
				zap.Error(res.err),
			)
			a.metrics.IncrementSourceFailures(res.source)

			continue
		}

		a.logger.Debug("received prices",
			zap.String("source", res.source),
			zap.Int("num_prices", len(res.prices)),
		)
		a.metrics.RecordPrices(res.prices)

		return res.prices, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Error("no price source is available", zap.Strings("sources", a.sources))

	return types.PriceObservation{}, nil
}
