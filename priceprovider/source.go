package priceprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/oracle-feeder/types"
	"github.com/babylonlabs-io/oracle-feeder/version"
)

// maxResponseBytes bounds the body read from a single source.
const maxResponseBytes = 1 << 20

type sourceResponse struct {
	Prices []sourcePrice `json:"prices"`
}

type sourcePrice struct {
	Currency string      `json:"currency"`
	Price    json.Number `json:"price"`
}

// fetchSource queries one source and reduces its quotes to one price per
// currency. Invalid quotes are skipped; a response without any valid quote is
// an error.
func fetchSource(ctx context.Context, client *http.Client, source string) (types.PriceObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("feederd"))

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parsePrices(body)
}

func parsePrices(body []byte) (types.PriceObservation, error) {
	var res sourceResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}

	quotes := make(map[string][]sdkmath.LegacyDec)
	for _, p := range res.Prices {
		currency := types.NormalizeCurrency(p.Currency)
		if currency == "" {
			continue
		}
		price, err := sdkmath.LegacyNewDecFromStr(p.Price.String())
		if err != nil || !price.IsPositive() {
			continue
		}
		quotes[currency] = append(quotes[currency], price)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("no valid price in response")
	}

	obs := make(types.PriceObservation, len(quotes))
	for currency, values := range quotes {
		median, err := types.MedianDec(values)
		if err != nil {
			return nil, err
		}
		obs[currency] = median
	}

	return obs, nil
}
