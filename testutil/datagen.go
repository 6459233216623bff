package testutil

import (
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/oracle-feeder/codec"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

const (
	TestAccountPrefix   = "terra"
	TestValidatorPrefix = "terravaloper"
)

var TestCurrencies = []string{"krw", "usd", "sdr", "mnt", "eur"}

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	newHeaderBytes := make([]byte, length)
	r.Read(newHeaderBytes)

	return newHeaderBytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	randBytes := GenRandomByteArray(r, length)

	return hex.EncodeToString(randBytes)
}

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

func GenRandomAccAddress(r *rand.Rand) string {
	return sdk.MustBech32ifyAddressBytes(TestAccountPrefix, GenRandomByteArray(r, 20))
}

func GenRandomValAddress(r *rand.Rand) string {
	return sdk.MustBech32ifyAddressBytes(TestValidatorPrefix, GenRandomByteArray(r, 20))
}

// GenRandomPrice returns a positive price with six decimals.
func GenRandomPrice(r *rand.Rand) sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecWithPrec(r.Int63n(1_000_000_000)+1, 6)
}

// GenRandomPriceObservation returns a price for a random non-empty subset
// of TestCurrencies.
func GenRandomPriceObservation(r *rand.Rand) types.PriceObservation {
	obs := make(types.PriceObservation)
	for _, c := range TestCurrencies {
		if r.Intn(2) == 0 {
			obs[c] = GenRandomPrice(r)
		}
	}
	if len(obs) == 0 {
		obs[TestCurrencies[r.Intn(len(TestCurrencies))]] = GenRandomPrice(r)
	}

	return obs
}

func GenRandomAccount(r *rand.Rand) *types.AccountState {
	return &types.AccountState{
		Address:       GenRandomAccAddress(r),
		AccountNumber: uint64(r.Int63n(100000)),
		Sequence:      uint64(r.Int63n(100000)),
	}
}

func GenSdkContext(r *rand.Rand, t *testing.T) client.Context {
	chainID := "testchain-" + GenRandomHexStr(r, 4)
	dir := t.TempDir()

	return client.Context{}.
		WithChainID(chainID).
		WithCodec(codec.MakeCodec()).
		WithKeyringDir(dir)
}

// GenPrevotes builds one prevote per currency of obs.
func GenPrevotes(r *rand.Rand, t *testing.T, obs types.PriceObservation, feeder, validator string) []types.OracleMessage {
	msgs := make([]types.OracleMessage, 0, len(obs))
	for _, c := range obs.Currencies() {
		hash := GenRandomHexStr(r, 20)
		msg, err := types.NewPrevote(hash, types.OracleDenom(c), feeder, validator)
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}

	return msgs
}

// GenVotes builds one vote per currency of obs with random salts.
func GenVotes(r *rand.Rand, t *testing.T, obs types.PriceObservation, feeder, validator string) []types.OracleMessage {
	msgs := make([]types.OracleMessage, 0, len(obs))
	for _, c := range obs.Currencies() {
		salt := strings.ToLower(GenRandomHexStr(r, 2))
		msg, err := types.NewVote(obs[c], salt, types.OracleDenom(c), feeder, validator)
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}

	return msgs
}
