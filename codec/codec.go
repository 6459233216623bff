package codec

import (
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/types"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
)

// MakeCodec returns the codec the keyring uses to (de)serialize key records.
func MakeCodec() *codec.ProtoCodec {
	ir := types.NewInterfaceRegistry()
	cryptocodec.RegisterInterfaces(ir)

	return codec.NewProtoCodec(ir)
}
