package lcd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/tx"
	"github.com/babylonlabs-io/oracle-feeder/types"
	"github.com/babylonlabs-io/oracle-feeder/version"
)

const (
	endpointLatestBlock = "/blocks/latest"
	endpointAccount     = "/auth/accounts/%s"
	endpointBroadcast   = "/txs"

	maxResponseSize = 4 << 20
	userAgentName   = "feederd"
)

var (
	RtyAttNum = uint(5)
	RtyAtt    = retry.Attempts(RtyAttNum)
	RtyDel    = retry.Delay(time.Millisecond * 400)
	RtyErr    = retry.LastErrorOnly(true)
)

// ErrBroadcastRejected is returned when the chain answers a broadcast with a
// non-zero code
var ErrBroadcastRejected = errors.New("the transaction was rejected by the chain")

var _ api.OracleController = &LCDController{}

// LCDController talks to the legacy REST server of the chain.
type LCDController struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewLCDController(cfg *config.ChainConfig, logger *zap.Logger) (*LCDController, error) {
	return NewLCDControllerWithClient(cfg.LCDAddress, &http.Client{Timeout: cfg.Timeout}, logger)
}

func NewLCDControllerWithClient(lcdAddress string, client *http.Client, logger *zap.Logger) (*LCDController, error) {
	u, err := url.Parse(lcdAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid lcd address %q: %w", lcdAddress, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid lcd address %q: scheme must be http or https", lcdAddress)
	}

	return &LCDController{
		baseURL: strings.TrimRight(lcdAddress, "/"),
		client:  client,
		logger:  logger.With(zap.String("module", "lcd_controller")),
	}, nil
}

type blockResponse struct {
	Block struct {
		Header struct {
			Height json.Number `json:"height"`
		} `json:"header"`
	} `json:"block"`
}

type accountValue struct {
	Address       string      `json:"address"`
	AccountNumber json.Number `json:"account_number"`
	Sequence      json.Number `json:"sequence"`
}

// accountResponse covers both the wrapped ({"height", "result"}) and the bare
// amino rendering of an account
type accountResponse struct {
	Result *struct {
		Value *accountValue `json:"value"`
	} `json:"result"`
	Value *accountValue `json:"value"`
}

type broadcastResponse struct {
	Height    json.Number `json:"height"`
	TxHash    string      `json:"txhash"`
	Code      uint32      `json:"code"`
	Codespace string      `json:"codespace"`
	RawLog    string      `json:"raw_log"`
	Error     string      `json:"error"`
}

func (lc *LCDController) QueryLatestBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64

	if err := retry.Do(func() error {
		var res blockResponse
		if _, err := lc.getJSON(ctx, endpointLatestBlock, &res); err != nil {
			return err
		}

		h, err := parseUint(res.Block.Header.Height)
		if err != nil {
			return fmt.Errorf("invalid block height: %w", err)
		}
		height = h

		return nil
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		lc.logger.Debug(
			"failed to query the latest block",
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return 0, fmt.Errorf("failed to query the latest block: %w", err)
	}

	return height, nil
}

func (lc *LCDController) QueryAccount(ctx context.Context, address string) (*types.AccountState, error) {
	var account *types.AccountState

	if err := retry.Do(func() error {
		var res accountResponse
		status, err := lc.getJSON(ctx, fmt.Sprintf(endpointAccount, url.PathEscape(address)), &res)
		if status == http.StatusNotFound {
			account = nil

			return nil
		}
		if err != nil {
			return err
		}

		value := res.Value
		if res.Result != nil && res.Result.Value != nil {
			value = res.Result.Value
		}
		// an unfunded account is rendered with an empty address
		if value == nil || value.Address == "" {
			account = nil

			return nil
		}

		accNum, err := parseUint(value.AccountNumber)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("invalid account number: %w", err))
		}
		seq, err := parseUint(value.Sequence)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("invalid sequence: %w", err))
		}

		account = &types.AccountState{
			Address:       value.Address,
			AccountNumber: accNum,
			Sequence:      seq,
		}

		return nil
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		lc.logger.Debug(
			"failed to query the account",
			zap.String("address", address),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", address, err)
	}

	return account, nil
}

// BroadcastTx posts the signed transaction once. Retrying is left to the
// next iteration, which starts from a fresh sequence.
func (lc *LCDController) BroadcastTx(ctx context.Context, signed *tx.SignedTx, mode types.BroadcastMode) (*types.TxResponse, error) {
	body, err := signed.BroadcastBody(mode)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lc.baseURL+endpointBroadcast, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent(userAgentName))

	resp, err := lc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to broadcast tx: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read broadcast response: %w", err)
	}

	var res broadcastResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode broadcast response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := res.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}

		return nil, fmt.Errorf("%w: status %d: %s", ErrBroadcastRejected, resp.StatusCode, msg)
	}

	if res.Code != 0 {
		return nil, NewBroadcastRejectedError(res.Codespace, res.Code, res.RawLog)
	}

	var height uint64
	if res.Height != "" {
		if height, err = parseUint(res.Height); err != nil {
			return nil, fmt.Errorf("invalid tx height: %w", err)
		}
	}

	return &types.TxResponse{
		TxHash: res.TxHash,
		Height: height,
		RawLog: res.RawLog,
	}, nil
}

func (lc *LCDController) Close() error {
	lc.client.CloseIdleConnections()

	return nil
}

// NewBroadcastRejectedError rebuilds the chain error from the broadcast response.
func NewBroadcastRejectedError(codespace string, code uint32, rawLog string) error {
	return fmt.Errorf("%w: %w", ErrBroadcastRejected, errorsmod.ABCIError(codespace, code, rawLog))
}

// getJSON decodes the body of a GET request into out. The status code is
// returned even when the request fails.
func (lc *LCDController) getJSON(ctx context.Context, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lc.baseURL+endpoint, nil)
	if err != nil {
		return 0, retry.Unrecoverable(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent(userAgentName))

	resp, err := lc.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response of %s: %w", endpoint, err)
	}

	return resp.StatusCode, nil
}

func parseUint(n json.Number) (uint64, error) {
	return strconv.ParseUint(n.String(), 10, 64)
}
