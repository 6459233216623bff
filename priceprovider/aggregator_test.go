package priceprovider_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/priceprovider"
	"github.com/babylonlabs-io/oracle-feeder/testutil"
)

func priceServer(t *testing.T, delay time.Duration, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newAggregator(t *testing.T, sources ...string) *priceprovider.Aggregator {
	return priceprovider.NewAggregatorWithClient(
		sources,
		&http.Client{Timeout: 2 * time.Second},
		testutil.GetTestLogger(t),
		metrics.NewFeederMetrics(),
	)
}

func TestAggregatorFirstSuccessWins(t *testing.T) {
	t.Parallel()

	slow := priceServer(t, 500*time.Millisecond, http.StatusOK, `{"prices":[{"currency":"usd","price":"9"}]}`)
	fast := priceServer(t, 0, http.StatusOK, `{"prices":[{"currency":"usd","price":"1.25"},{"currency":"krw","price":"1150"}]}`)
	broken := priceServer(t, 0, http.StatusInternalServerError, `oops`)

	agg := newAggregator(t, slow.URL, broken.URL, fast.URL)
	obs, err := agg.FetchPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 2)

	usd, ok := obs.Get("USD")
	require.True(t, ok)
	require.True(t, sdkmath.LegacyMustNewDecFromStr("1.25").Equal(usd))
}

func TestAggregatorSourcesNotMerged(t *testing.T) {
	t.Parallel()

	onlyUsd := priceServer(t, 0, http.StatusOK, `{"prices":[{"currency":"usd","price":"1.25"}]}`)
	onlyKrw := priceServer(t, 300*time.Millisecond, http.StatusOK, `{"prices":[{"currency":"krw","price":"1150"}]}`)

	obs, err := newAggregator(t, onlyKrw.URL, onlyUsd.URL).FetchPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 1)
	_, ok := obs.Get("usd")
	require.True(t, ok)
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	t.Parallel()

	broken := priceServer(t, 0, http.StatusBadGateway, ``)
	invalid := priceServer(t, 0, http.StatusOK, `not json`)
	empty := priceServer(t, 0, http.StatusOK, `{"prices":[]}`)

	obs, err := newAggregator(t, broken.URL, invalid.URL, empty.URL, "http://127.0.0.1:1/unreachable").
		FetchPrices(context.Background())
	require.NoError(t, err)
	require.Empty(t, obs)
}

func TestAggregatorNoSources(t *testing.T) {
	t.Parallel()

	obs, err := newAggregator(t).FetchPrices(context.Background())
	require.NoError(t, err)
	require.Empty(t, obs)
}

func TestAggregatorCancelled(t *testing.T) {
	t.Parallel()

	slow := priceServer(t, 2*time.Second, http.StatusOK, `{"prices":[{"currency":"usd","price":"1"}]}`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newAggregator(t, slow.URL).FetchPrices(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := priceprovider.DefaultConfig()
	require.Error(t, cfg.Validate())

	cfg.Sources = []string{"http://127.0.0.1:8532/latest"}
	require.NoError(t, cfg.Validate())

	cfg.Sources = append(cfg.Sources, "ftp://prices.example.com")
	require.Error(t, cfg.Validate())

	cfg.Sources = cfg.Sources[:1]
	cfg.Timeout = 0
	require.Error(t, cfg.Validate())
}
