package types

import "context"

// PriceFetcher produces the price observation of one iteration. An empty
// observation with a nil error means no source could be reached.
type PriceFetcher interface {
	FetchPrices(ctx context.Context) (PriceObservation, error)
}
