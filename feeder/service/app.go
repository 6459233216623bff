package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/zap"

	fdcc "github.com/babylonlabs-io/oracle-feeder/clientcontroller"
	ccapi "github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/store"
	fdkr "github.com/babylonlabs-io/oracle-feeder/keyring"
	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/priceprovider"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

const metricsShutdownTimeout = 5 * time.Second

// FeederApp wires the voting loop to its collaborators.
type FeederApp struct {
	startOnce sync.Once
	stopOnce  sync.Once

	cc      ccapi.OracleController
	signer  types.Signer
	history *store.HistoryStore
	config  *config.Config
	logger  *zap.Logger

	instance *FeederInstance

	metrics       *metrics.FeederMetrics
	metricsServer *http.Server
}

// NewFeederAppFromConfig creates a new FeederApp instance from the given configuration.
func NewFeederAppFromConfig(
	cfg *config.Config,
	db kvdb.Backend,
	passphrase string,
	logger *zap.Logger,
) (*FeederApp, error) {
	cc, err := fdcc.NewOracleController(cfg.ChainConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create the client for the oracle chain: %w", err)
	}

	signer, err := fdkr.NewSignerFromConfig(cfg.ChainConfig, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load the feeder key: %w", err)
	}

	feederMetrics := metrics.NewFeederMetrics()
	aggregator := priceprovider.NewAggregator(cfg.PriceSourceConfig, logger, feederMetrics)

	return NewFeederApp(cfg, cc, aggregator, signer, feederMetrics, db, logger)
}

func NewFeederApp(
	cfg *config.Config,
	cc ccapi.OracleController,
	fetcher types.PriceFetcher,
	signer types.Signer,
	feederMetrics *metrics.FeederMetrics,
	db kvdb.Backend,
	logger *zap.Logger,
) (*FeederApp, error) {
	history, err := store.NewHistoryStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate submission history store: %w", err)
	}

	filter, err := types.ParseDenomFilter(cfg.VotingConfig.Denoms)
	if err != nil {
		return nil, err
	}

	tracker, err := NewPeriodTracker(cfg.VotingConfig.VotePeriod)
	if err != nil {
		return nil, err
	}

	submitter, err := NewSubmitter(cfg.ChainConfig, cc, signer, logger)
	if err != nil {
		return nil, err
	}

	scheduler := NewCommitRevealScheduler(
		signer.Address(),
		cfg.ChainConfig.ValidatorAddress,
		filter,
		DefaultSalt,
		types.DefaultVoteHash,
		feederMetrics,
		logger,
	)

	instance := NewFeederInstance(
		cfg.VotingConfig,
		fetcher,
		cc,
		tracker,
		scheduler,
		NewSequenceManager(cc, signer.Address()),
		submitter,
		history,
		feederMetrics,
		logger,
	)

	return &FeederApp{
		cc:       cc,
		signer:   signer,
		history:  history,
		config:   cfg,
		logger:   logger,
		instance: instance,
		metrics:  feederMetrics,
	}, nil
}

func (app *FeederApp) GetConfig() *config.Config {
	return app.config
}

func (app *FeederApp) GetHistoryStore() *store.HistoryStore {
	return app.history
}

func (app *FeederApp) GetFeederInstance() *FeederInstance {
	return app.instance
}

func (app *FeederApp) Start(ctx context.Context) error {
	var startErr error
	app.startOnce.Do(func() {
		app.logger.Info("starting the oracle feeder",
			zap.String("feeder", app.signer.Address()),
			zap.String("validator", app.config.ChainConfig.ValidatorAddress),
			zap.String("denoms", app.config.VotingConfig.Denoms))

		if app.config.Metrics.Enabled {
			addr, err := app.config.Metrics.Address()
			if err != nil {
				startErr = fmt.Errorf("invalid metrics address: %w", err)

				return
			}
			app.metricsServer = metrics.Start(addr, app.metrics.Registry(), app.logger)
		}

		if err := app.instance.Start(ctx); err != nil {
			startErr = err
		}
	})

	return startErr
}

func (app *FeederApp) Stop() error {
	var stopErr error
	app.stopOnce.Do(func() {
		app.logger.Info("stopping the oracle feeder")

		if err := app.instance.Stop(); err != nil {
			stopErr = err
		}

		if app.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := app.metricsServer.Shutdown(ctx); err != nil {
				app.logger.Warn("failed to stop the metrics server", zap.Error(err))
			}
		}

		if err := app.cc.Close(); err != nil {
			stopErr = fmt.Errorf("failed to close the oracle chain client: %w", err)
		}
	})

	return stopErr
}
