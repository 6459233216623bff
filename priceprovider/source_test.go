package priceprovider

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestParsePrices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected map[string]string
		expErr   bool
	}{
		{
			name:     "single quotes",
			body:     `{"prices":[{"currency":"KRW","price":"1150.5"},{"currency":"usd","price":1.25}]}`,
			expected: map[string]string{"krw": "1150.5", "usd": "1.25"},
		},
		{
			name:     "duplicate quotes use the median",
			body:     `{"prices":[{"currency":"usd","price":"1"},{"currency":"USD","price":"3"},{"currency":"usd","price":"2"}]}`,
			expected: map[string]string{"usd": "2"},
		},
		{
			name:     "even duplicates average the middle",
			body:     `{"prices":[{"currency":"eur","price":"1"},{"currency":"eur","price":"2"}]}`,
			expected: map[string]string{"eur": "1.5"},
		},
		{
			name:     "invalid quotes are skipped",
			body:     `{"prices":[{"currency":"usd","price":"abc"},{"currency":"","price":"1"},{"currency":"mnt","price":"-3"},{"currency":"sdr","price":"0.9"}]}`,
			expected: map[string]string{"sdr": "0.9"},
		},
		{
			name:   "no valid quote",
			body:   `{"prices":[{"currency":"usd","price":"0"}]}`,
			expErr: true,
		},
		{
			name:   "empty list",
			body:   `{"prices":[]}`,
			expErr: true,
		},
		{
			name:   "malformed json",
			body:   `{"prices":`,
			expErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			obs, err := parsePrices([]byte(tc.body))
			if tc.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, obs, len(tc.expected))
			for currency, price := range tc.expected {
				got, ok := obs[currency]
				require.True(t, ok, currency)
				require.True(t, sdkmath.LegacyMustNewDecFromStr(price).Equal(got), "%s: %s", currency, got)
			}
		})
	}
}
