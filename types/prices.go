package types

import (
	"fmt"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// PriceObservation maps a lower-cased currency symbol to its price. It is built
// once per iteration and must not be mutated after it is handed to the scheduler.
type PriceObservation map[string]sdkmath.LegacyDec

// NormalizeCurrency returns the canonical form of a currency symbol.
func NormalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}

// Currencies returns the observed currencies in lexical order.
func (po PriceObservation) Currencies() []string {
	currencies := make([]string, 0, len(po))
	for c := range po {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	return currencies
}

// Get looks up the price of a currency, ignoring case.
func (po PriceObservation) Get(currency string) (sdkmath.LegacyDec, bool) {
	p, ok := po[NormalizeCurrency(currency)]

	return p, ok
}

// MedianDec returns the median of the given values. For an even number of values
// it is the mean of the two middle elements.
func MedianDec(values []sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if len(values) == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("cannot compute the median of an empty set")
	}

	sorted := make([]sdkmath.LegacyDec, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LT(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}

	return sorted[mid-1].Add(sorted[mid]).QuoInt64(2), nil
}

// DenomFilter decides which currencies take part in voting.
type DenomFilter struct {
	all     bool
	allowed map[string]struct{}
}

const AllDenoms = "all"

// ParseDenomFilter parses "all" or a comma separated list such as "krw,eur,usd".
func ParseDenomFilter(s string) (*DenomFilter, error) {
	s = NormalizeCurrency(s)
	if s == "" {
		return nil, fmt.Errorf("the denom list should not be empty")
	}
	if s == AllDenoms {
		return &DenomFilter{all: true}, nil
	}

	allowed := make(map[string]struct{})
	for _, d := range strings.Split(s, ",") {
		d = NormalizeCurrency(d)
		if d == "" {
			continue
		}
		allowed[d] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("invalid denom list %q", s)
	}

	return &DenomFilter{allowed: allowed}, nil
}

func (f *DenomFilter) Allows(currency string) bool {
	if f == nil || f.all {
		return true
	}
	_, ok := f.allowed[NormalizeCurrency(currency)]

	return ok
}

// OracleDenom maps a currency symbol to the micro denom used by the oracle module,
// e.g. "KRW" -> "ukrw".
func OracleDenom(currency string) string {
	return "u" + NormalizeCurrency(currency)
}
