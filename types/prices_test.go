package types_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/oracle-feeder/types"
)

func decs(values ...string) []sdkmath.LegacyDec {
	res := make([]sdkmath.LegacyDec, 0, len(values))
	for _, v := range values {
		res = append(res, sdkmath.LegacyMustNewDecFromStr(v))
	}

	return res
}

func TestMedianDec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []sdkmath.LegacyDec
		expected string
	}{
		{"single", decs("1.5"), "1.5"},
		{"odd unsorted", decs("3", "1", "2"), "2"},
		{"even", decs("4", "1", "2", "3"), "2.5"},
		{"duplicates", decs("7", "7", "1"), "7"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			before := make([]sdkmath.LegacyDec, len(tc.values))
			copy(before, tc.values)

			median, err := types.MedianDec(tc.values)
			require.NoError(t, err)
			require.True(t, sdkmath.LegacyMustNewDecFromStr(tc.expected).Equal(median), median.String())
			// the input is left untouched
			require.Equal(t, before, tc.values)
		})
	}

	_, err := types.MedianDec(nil)
	require.Error(t, err)
}

func TestDenomFilter(t *testing.T) {
	t.Parallel()

	all, err := types.ParseDenomFilter(" ALL ")
	require.NoError(t, err)
	require.True(t, all.Allows("krw"))
	require.True(t, all.Allows("anything"))

	some, err := types.ParseDenomFilter("KRW, usd,,")
	require.NoError(t, err)
	require.True(t, some.Allows("krw"))
	require.True(t, some.Allows("USD"))
	require.False(t, some.Allows("eur"))

	for _, invalid := range []string{"", "  ", ",,"} {
		_, err := types.ParseDenomFilter(invalid)
		require.Error(t, err, invalid)
	}

	var nilFilter *types.DenomFilter
	require.True(t, nilFilter.Allows("krw"))
}

func TestPriceObservation(t *testing.T) {
	t.Parallel()

	obs := types.PriceObservation{
		"usd": sdkmath.LegacyOneDec(),
		"eur": sdkmath.LegacyOneDec(),
		"krw": sdkmath.LegacyOneDec(),
	}
	require.Equal(t, []string{"eur", "krw", "usd"}, obs.Currencies())

	_, ok := obs.Get(" USD")
	require.True(t, ok)
	_, ok = obs.Get("mnt")
	require.False(t, ok)

	require.Equal(t, "ukrw", types.OracleDenom("KRW"))
	require.Equal(t, "usdr", types.OracleDenom("sdr"))
}
