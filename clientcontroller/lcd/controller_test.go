package lcd_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/lcd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/tx"
	"github.com/babylonlabs-io/oracle-feeder/testutil"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

func newController(t *testing.T, handler http.Handler) *lcd.LCDController {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cc, err := lcd.NewLCDControllerWithClient(srv.URL, srv.Client(), testutil.GetTestLogger(t))
	require.NoError(t, err)

	return cc
}

func genSignedTx(t *testing.T, r *rand.Rand) *tx.SignedTx {
	obs := testutil.GenRandomPriceObservation(r)
	msgs := testutil.GenPrevotes(r, t, obs, testutil.GenRandomAccAddress(r), testutil.GenRandomValAddress(r))
	utx, err := tx.BuildUnsignedTx(msgs, nil, 200000, "")
	require.NoError(t, err)
	stx, err := tx.NewSignedTx(utx, &types.Signature{
		Signature:   testutil.GenRandomByteArray(r, 64),
		PubKeyBytes: testutil.GenRandomByteArray(r, 33),
		PubKeyType:  "tendermint/PubKeySecp256k1",
	})
	require.NoError(t, err)

	return stx
}

func TestQueryLatestBlockHeight(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/blocks/latest", r.URL.Path)
		// the first call fails and is retried
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}
		_, _ = io.WriteString(w, `{"block_meta":{},"block":{"header":{"chain_id":"columbus-3","height":"104"}}}`)
	}))

	height, err := cc.QueryLatestBlockHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(104), height)
	require.Equal(t, int32(2), calls.Load())
}

func TestQueryLatestBlockHeightCancelled(t *testing.T) {
	t.Parallel()

	cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cc.QueryLatestBlockHeight(ctx)
	require.Error(t, err)
}

func TestQueryAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		expected *types.AccountState
		wantErr  bool
	}{
		{
			name:     "wrapped result",
			status:   http.StatusOK,
			body:     `{"height":"10","result":{"type":"core/Account","value":{"address":"terra1abc","account_number":"12","sequence":"7"}}}`,
			expected: &types.AccountState{Address: "terra1abc", AccountNumber: 12, Sequence: 7},
		},
		{
			name:     "bare amino value",
			status:   http.StatusOK,
			body:     `{"type":"auth/Account","value":{"address":"terra1abc","account_number":"3","sequence":"0"}}`,
			expected: &types.AccountState{Address: "terra1abc", AccountNumber: 3, Sequence: 0},
		},
		{
			name:   "unfunded account",
			status: http.StatusOK,
			body:   `{"height":"10","result":{"type":"core/Account","value":{"address":"","account_number":"0","sequence":"0"}}}`,
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"error":"account not found"}`,
		},
		{
			name:    "malformed sequence",
			status:  http.StatusOK,
			body:    `{"value":{"address":"terra1abc","account_number":"3","sequence":"x"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/auth/accounts/terra1abc", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			account, err := cc.QueryAccount(context.Background(), "terra1abc")
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, account)
		})
	}
}

func TestBroadcastTx(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))
	stx := genSignedTx(t, r)

	cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "/txs", req.URL.Path)

		var body struct {
			Tx   json.RawMessage `json:"tx"`
			Mode string          `json:"mode"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		require.Equal(t, "block", body.Mode)
		require.True(t, strings.Contains(string(body.Tx), types.MsgTypePrevote))

		_, _ = io.WriteString(w, `{"height":"112","txhash":"ABCDEF","raw_log":"[]"}`)
	}))

	res, err := cc.BroadcastTx(context.Background(), stx, types.BroadcastModeBlock)
	require.NoError(t, err)
	require.Equal(t, &types.TxResponse{TxHash: "ABCDEF", Height: 112, RawLog: "[]"}, res)
}

func TestBroadcastTxRejected(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(11))
	stx := genSignedTx(t, r)

	cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"height":"0","txhash":"ABCDEF","code":32,"codespace":"sdk","raw_log":"account sequence mismatch, expected 8, got 7"}`)
	}))

	_, err := cc.BroadcastTx(context.Background(), stx, types.BroadcastModeSync)
	require.ErrorIs(t, err, lcd.ErrBroadcastRejected)
	require.True(t, errors.Is(err, sdkerrors.ErrWrongSequence))
	require.Contains(t, err.Error(), "account sequence mismatch")
}

func TestBroadcastTxHTTPError(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(12))
	stx := genSignedTx(t, r)

	cc := newController(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid signature"}`)
	}))

	_, err := cc.BroadcastTx(context.Background(), stx, types.BroadcastModeBlock)
	require.ErrorIs(t, err, lcd.ErrBroadcastRejected)
	require.Contains(t, err.Error(), "invalid signature")
}

func TestNewLCDControllerRejectsBadAddress(t *testing.T) {
	t.Parallel()

	_, err := lcd.NewLCDControllerWithClient("ftp://127.0.0.1", http.DefaultClient, testutil.GetTestLogger(t))
	require.Error(t, err)
}
