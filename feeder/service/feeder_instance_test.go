package service_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/lcd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/service"
	"github.com/babylonlabs-io/oracle-feeder/feeder/store"
	"github.com/babylonlabs-io/oracle-feeder/feeder/tx"
	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/testutil"
	"github.com/babylonlabs-io/oracle-feeder/testutil/mocks"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

const testPeriodLength = 10

type testFeeder struct {
	instance   *service.FeederInstance
	scheduler  *service.CommitRevealScheduler
	sequence   *service.SequenceManager
	fetcher    *mocks.MockPriceFetcher
	controller *mocks.MockOracleController
	history    *store.HistoryStore
	metrics    *metrics.FeederMetrics
	account    string
	validator  string
}

func newTestFeeder(t *testing.T, r *rand.Rand) *testFeeder {
	ctl := gomock.NewController(t)
	fetcher := mocks.NewMockPriceFetcher(ctl)
	controller := mocks.NewMockOracleController(ctl)

	account := testutil.GenRandomAccAddress(r)
	validator := testutil.GenRandomValAddress(r)
	signer := testutil.PrepareMockedSigner(t, r, account)
	logger := testutil.GetTestLogger(t)
	m := metrics.NewFeederMetrics()

	chainCfg := config.DefaultChainConfig()
	chainCfg.ValidatorAddress = validator
	votingCfg := config.DefaultVotingConfig()
	votingCfg.VotePeriod = testPeriodLength
	votingCfg.LoopInterval = 50 * time.Millisecond
	votingCfg.MinLoopInterval = 10 * time.Millisecond

	filter, err := types.ParseDenomFilter(votingCfg.Denoms)
	require.NoError(t, err)
	tracker, err := service.NewPeriodTracker(votingCfg.VotePeriod)
	require.NoError(t, err)
	scheduler := service.NewCommitRevealScheduler(account, validator, filter, fixedSalt(testSalt), types.DefaultVoteHash, m, logger)
	sequence := service.NewSequenceManager(controller, account)
	submitter, err := service.NewSubmitter(&chainCfg, controller, signer, logger)
	require.NoError(t, err)

	db, err := config.DefaultDBConfigWithHomePath(t.TempDir()).GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	history, err := store.NewHistoryStore(db)
	require.NoError(t, err)

	instance := service.NewFeederInstance(&votingCfg, fetcher, controller, tracker, scheduler, sequence, submitter, history, m, logger)

	return &testFeeder{
		instance:   instance,
		scheduler:  scheduler,
		sequence:   sequence,
		fetcher:    fetcher,
		controller: controller,
		history:    history,
		metrics:    m,
		account:    account,
		validator:  validator,
	}
}

func (tf *testFeeder) expectChainState(height, accountNumber, sequence uint64) {
	tf.controller.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(height, nil)
	tf.controller.EXPECT().QueryAccount(gomock.Any(), tf.account).Return(&types.AccountState{
		Address:       tf.account,
		AccountNumber: accountNumber,
		Sequence:      sequence,
	}, nil)
}

func (tf *testFeeder) seedCommit(t *testing.T, currency string, price sdkmath.LegacyDec, salt string, period uint64) {
	require.NoError(t, tf.scheduler.SetPending(currency, types.PendingCommit{
		Price:  price,
		Salt:   salt,
		Hash:   types.DefaultVoteHash(salt, price, types.OracleDenom(currency), tf.validator),
		Period: period,
	}))
}

func msgTypes(signed *tx.SignedTx) []string {
	var res []string
	for _, m := range signed.Messages() {
		res = append(res, m.Type())
	}

	return res
}

func TestRunIterationRevealThenPrevote(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(20))
	tf := newTestFeeder(t, r)

	committed := sdkmath.LegacyMustNewDecFromStr("1.23")
	tf.seedCommit(t, "usd", committed, "abc", 10)

	fresh := sdkmath.LegacyMustNewDecFromStr("1.25")
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{"usd": fresh}, nil)
	tf.expectChainState(112, 7, 40)

	revealHash := testutil.GenRandomHexStr(r, 32)
	prevoteHash := testutil.GenRandomHexStr(r, 32)
	gomock.InOrder(
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), types.BroadcastModeBlock).
			DoAndReturn(func(_ context.Context, signed *tx.SignedTx, _ types.BroadcastMode) (*types.TxResponse, error) {
				require.Equal(t, []string{types.MsgTypeVote}, msgTypes(signed))
				vote := signed.Messages()[0].(*types.Vote)
				require.True(t, committed.Equal(vote.ExchangeRate))
				require.Equal(t, "abc", vote.Salt)

				return &types.TxResponse{TxHash: revealHash, Height: 112}, nil
			}),
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), types.BroadcastModeBlock).
			DoAndReturn(func(_ context.Context, signed *tx.SignedTx, _ types.BroadcastMode) (*types.TxResponse, error) {
				require.Equal(t, []string{types.MsgTypePrevote}, msgTypes(signed))

				return &types.TxResponse{TxHash: prevoteHash, Height: 112}, nil
			}),
	)

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.False(t, res.Skipped())
	require.Equal(t, uint64(11), res.Info.Period)

	require.True(t, res.Reveal.Succeeded())
	require.Equal(t, uint64(40), res.Reveal.Sequence)
	require.Equal(t, revealHash, res.Reveal.Response.TxHash)
	require.True(t, res.Prevote.Succeeded())
	require.Equal(t, uint64(41), res.Prevote.Sequence)
	require.Equal(t, uint64(42), tf.sequence.Current().Sequence)

	commit, ok := tf.scheduler.Pending("usd")
	require.True(t, ok)
	require.Equal(t, uint64(11), commit.Period)
	require.True(t, fresh.Equal(commit.Price))

	subs, err := tf.history.ListSubmissions("uusd", 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, s := range subs {
		switch s.Kind {
		case store.KindVote:
			require.Equal(t, uint64(10), s.Period)
			require.Equal(t, "abc", s.Salt)
			require.Equal(t, revealHash, s.TxHash)
		case store.KindPrevote:
			require.Equal(t, uint64(11), s.Period)
			require.Equal(t, commit.Hash, s.Hash)
			require.Equal(t, prevoteHash, s.TxHash)
		}
	}
}

func TestRunIterationCommitUsesInclusionHeight(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(29))
	tf := newTestFeeder(t, r)

	prices := types.PriceObservation{"usd": sdkmath.LegacyMustNewDecFromStr("1.25")}
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(prices, nil).Times(3)

	// planned at height 108 (period 10), included at height 110 (period 11)
	tf.expectChainState(108, 7, 40)
	tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&types.TxResponse{TxHash: testutil.GenRandomHexStr(r, 32), Height: 110}, nil)

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(10), res.Info.Period)
	require.True(t, res.Prevote.Succeeded())
	commit, ok := tf.scheduler.Pending("usd")
	require.True(t, ok)
	require.Equal(t, uint64(11), commit.Period)

	// still period 11: the commit is neither revealed nor replaced
	tf.expectChainState(111, 7, 41)
	res, err = tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped())

	// period 12 reveals it
	tf.expectChainState(120, 7, 41)
	gomock.InOrder(
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, signed *tx.SignedTx, _ types.BroadcastMode) (*types.TxResponse, error) {
				require.Equal(t, []string{types.MsgTypeVote}, msgTypes(signed))
				require.Equal(t, commit.Salt, signed.Messages()[0].(*types.Vote).Salt)

				return &types.TxResponse{TxHash: testutil.GenRandomHexStr(r, 32), Height: 120}, nil
			}),
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&types.TxResponse{TxHash: testutil.GenRandomHexStr(r, 32), Height: 120}, nil),
	)
	res, err = tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(12), res.Info.Period)
	require.True(t, res.Reveal.Succeeded())
	require.True(t, res.Prevote.Succeeded())
}

func TestRunIterationSyncBroadcastKeepsPlannedPeriod(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(30))
	tf := newTestFeeder(t, r)

	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{"usd": sdkmath.LegacyOneDec()}, nil)
	tf.expectChainState(108, 7, 40)
	// sync broadcasts return before inclusion and carry no height
	tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&types.TxResponse{TxHash: testutil.GenRandomHexStr(r, 32)}, nil)

	_, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	commit, ok := tf.scheduler.Pending("usd")
	require.True(t, ok)
	require.Equal(t, uint64(10), commit.Period)
}

func TestRunIterationAcceptsLowerHeightAfterRepeatedRegressions(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(31))
	tf := newTestFeeder(t, r)
	limit := int(config.DefaultVotingConfig().HeightRegressionLimit)

	prices := types.PriceObservation{"usd": sdkmath.LegacyOneDec()}
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(prices, nil).Times(limit + 1)

	// last block of period 50: nothing to submit
	tf.expectChainState(509, 7, 40)
	_, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	tf.seedCommit(t, "usd", sdkmath.LegacyOneDec(), "abc", 50)

	tf.controller.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(uint64(129), nil).Times(limit - 1)
	for i := 1; i < limit; i++ {
		_, err = tf.instance.RunIteration(context.Background())
		require.ErrorIs(t, err, service.ErrHeightRegressed)
		require.Equal(t, float64(i), gaugeValue(t, tf.metrics, "feeder_height_regressions"))
	}
	_, ok := tf.scheduler.Pending("usd")
	require.True(t, ok)

	tf.expectChainState(129, 7, 40)
	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(12), res.Info.Period)
	require.True(t, res.Skipped())
	require.Zero(t, gaugeValue(t, tf.metrics, "feeder_height_regressions"))

	// the commit of period 50 can never be revealed on this chain
	_, ok = tf.scheduler.Pending("usd")
	require.False(t, ok)
}

func gaugeValue(t *testing.T, m *metrics.FeederMetrics, name string) float64 {
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			require.Len(t, f.GetMetric(), 1)

			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)

	return 0
}

func TestRunIterationRevealFailureKeepsSequence(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(21))
	tf := newTestFeeder(t, r)

	tf.seedCommit(t, "usd", sdkmath.LegacyMustNewDecFromStr("1.23"), "abc", 10)
	fresh := sdkmath.LegacyMustNewDecFromStr("1.25")
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{"usd": fresh}, nil)
	tf.expectChainState(112, 7, 40)

	rejected := lcd.NewBroadcastRejectedError(sdkerrors.RootCodespace, sdkerrors.ErrUnauthorized.ABCICode(), "signature verification failed")
	gomock.InOrder(
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, rejected),
		tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&types.TxResponse{TxHash: testutil.GenRandomHexStr(r, 32)}, nil),
	)

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)

	require.False(t, res.Reveal.Succeeded())
	require.ErrorIs(t, res.Reveal.Err, service.ErrBroadcastRejected)
	require.Equal(t, uint64(40), res.Reveal.Sequence)
	require.True(t, res.Prevote.Succeeded())
	require.Equal(t, uint64(40), res.Prevote.Sequence)

	// the failed reveal is abandoned for the new commit
	commit, ok := tf.scheduler.Pending("usd")
	require.True(t, ok)
	require.Equal(t, uint64(11), commit.Period)
	require.True(t, fresh.Equal(commit.Price))
}

func TestRunIterationPrevoteFailureKeepsNoCommit(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(22))
	tf := newTestFeeder(t, r)

	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{"usd": sdkmath.LegacyOneDec()}, nil)
	tf.expectChainState(104, 7, 3)
	tf.controller.EXPECT().BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.Nil(t, res.Reveal)
	require.Error(t, res.Prevote.Err)
	require.Zero(t, tf.scheduler.PendingCount())
	require.Equal(t, uint64(3), tf.sequence.Current().Sequence)
}

func TestRunIterationNoPrices(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(23))
	tf := newTestFeeder(t, r)

	// no chain query nor broadcast is expected
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{}, nil)

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped())
	require.Nil(t, res.Reveal)
	require.Nil(t, res.Prevote)
}

func TestRunIterationNothingToSubmit(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(24))
	tf := newTestFeeder(t, r)

	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{"usd": sdkmath.LegacyOneDec()}, nil)
	// last block of the period, nothing pending
	tf.expectChainState(119, 7, 3)

	res, err := tf.instance.RunIteration(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped())
	require.Equal(t, uint64(11), res.Info.Period)
}

func TestRunIterationErrors(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(25))
	prices := types.PriceObservation{"usd": sdkmath.LegacyOneDec()}

	t.Run("fetcher error", func(t *testing.T) {
		tf := newTestFeeder(t, r)
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(nil, context.DeadlineExceeded)

		_, err := tf.instance.RunIteration(context.Background())
		require.ErrorIs(t, err, service.ErrSourceUnavailable)
	})

	t.Run("height query error", func(t *testing.T) {
		tf := newTestFeeder(t, r)
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(prices, nil)
		tf.controller.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(uint64(0), errors.New("timeout"))

		_, err := tf.instance.RunIteration(context.Background())
		require.ErrorIs(t, err, service.ErrChainQuery)
	})

	t.Run("unknown account", func(t *testing.T) {
		tf := newTestFeeder(t, r)
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(prices, nil)
		tf.controller.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(uint64(104), nil)
		tf.controller.EXPECT().QueryAccount(gomock.Any(), tf.account).Return(nil, nil)

		_, err := tf.instance.RunIteration(context.Background())
		require.ErrorIs(t, err, service.ErrAccountNotFound)
	})

	t.Run("height regressed", func(t *testing.T) {
		tf := newTestFeeder(t, r)
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(prices, nil).Times(2)
		tf.expectChainState(119, 7, 3)
		tf.controller.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(uint64(118), nil)

		_, err := tf.instance.RunIteration(context.Background())
		require.NoError(t, err)
		_, err = tf.instance.RunIteration(context.Background())
		require.ErrorIs(t, err, service.ErrHeightRegressed)
	})
}

func TestNextDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected time.Duration
	}{
		{"fast iteration waits the remainder", 2 * time.Second, 13 * time.Second},
		{"slow iteration waits the minimum", 9 * time.Second, 10 * time.Second},
		{"overrun iteration waits the minimum", 30 * time.Second, 10 * time.Second},
		{"instant iteration", 0, 15 * time.Second},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, service.NextDelay(15*time.Second, 10*time.Second, tc.elapsed))
		})
	}
}

func TestFeederInstanceStartStop(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(26))
	tf := newTestFeeder(t, r)

	fetched := make(chan struct{}, 10)
	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).
		DoAndReturn(func(context.Context) (types.PriceObservation, error) {
			select {
			case fetched <- struct{}{}:
			default:
			}

			return types.PriceObservation{}, nil
		}).MinTimes(1)

	require.NoError(t, tf.instance.Start(context.Background()))
	require.True(t, tf.instance.IsRunning())
	require.Error(t, tf.instance.Start(context.Background()))

	// the loop keeps iterating
	for i := 0; i < 2; i++ {
		select {
		case <-fetched:
		case <-time.After(5 * time.Second):
			t.Fatal("the voting loop did not iterate")
		}
	}

	require.NoError(t, tf.instance.Stop())
	require.False(t, tf.instance.IsRunning())
	require.Error(t, tf.instance.Stop())
}

func TestFeederInstanceStopsWithContext(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(27))
	tf := newTestFeeder(t, r)

	tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{}, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tf.instance.Start(ctx))
	cancel()

	// Stop still succeeds after the loop has exited on its own
	require.NoError(t, tf.instance.Stop())
}

func TestVotingLoopSurvivesPanic(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(28))
	tf := newTestFeeder(t, r)

	recovered := make(chan struct{})
	gomock.InOrder(
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).
			DoAndReturn(func(context.Context) (types.PriceObservation, error) {
				panic("source exploded")
			}),
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).
			DoAndReturn(func(context.Context) (types.PriceObservation, error) {
				close(recovered)

				return types.PriceObservation{}, nil
			}),
		tf.fetcher.EXPECT().FetchPrices(gomock.Any()).Return(types.PriceObservation{}, nil).AnyTimes(),
	)

	require.NoError(t, tf.instance.Start(context.Background()))
	select {
	case <-recovered:
	case <-time.After(5 * time.Second):
		t.Fatal("the voting loop did not survive the panic")
	}
	require.NoError(t, tf.instance.Stop())
}
