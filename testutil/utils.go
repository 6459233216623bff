package testutil

import (
	"math/rand"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/babylonlabs-io/oracle-feeder/testutil/mocks"
	"github.com/babylonlabs-io/oracle-feeder/types"
)

// PrepareMockedChainReader returns a reader that always reports the given
// height and account.
func PrepareMockedChainReader(t *testing.T, height uint64, account *types.AccountState) *mocks.MockChainReader {
	ctl := gomock.NewController(t)
	mockReader := mocks.NewMockChainReader(ctl)

	mockReader.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(height, nil).AnyTimes()
	mockReader.EXPECT().QueryAccount(gomock.Any(), account.Address).Return(account, nil).AnyTimes()

	return mockReader
}

func PrepareMockedOracleController(t *testing.T, r *rand.Rand, height uint64, account *types.AccountState) *mocks.MockOracleController {
	return PrepareMockedOracleControllerWithTxHash(t, height, account, GenRandomHexStr(r, 32))
}

// PrepareMockedOracleControllerWithTxHash returns a controller that accepts
// every broadcast with the given tx hash.
func PrepareMockedOracleControllerWithTxHash(t *testing.T, height uint64, account *types.AccountState, txHash string) *mocks.MockOracleController {
	ctl := gomock.NewController(t)
	mockController := mocks.NewMockOracleController(ctl)

	mockController.EXPECT().Close().Return(nil).AnyTimes()
	mockController.EXPECT().QueryLatestBlockHeight(gomock.Any()).Return(height, nil).AnyTimes()
	mockController.EXPECT().QueryAccount(gomock.Any(), account.Address).Return(account, nil).AnyTimes()
	mockController.EXPECT().
		BroadcastTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&types.TxResponse{TxHash: txHash, Height: height}, nil).
		AnyTimes()

	return mockController
}

// PrepareMockedSigner returns a signer for address producing a fixed
// signature.
func PrepareMockedSigner(t *testing.T, r *rand.Rand, address string) *mocks.MockSigner {
	ctl := gomock.NewController(t)
	mockSigner := mocks.NewMockSigner(ctl)

	sig := &types.Signature{
		Signature:   GenRandomByteArray(r, 64),
		PubKeyBytes: GenRandomByteArray(r, 33),
		PubKeyType:  "tendermint/PubKeySecp256k1",
	}
	mockSigner.EXPECT().Address().Return(address).AnyTimes()
	mockSigner.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(sig, nil).AnyTimes()

	return mockSigner
}
