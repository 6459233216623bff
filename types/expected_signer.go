package types

import "context"

// Signature is a signature over canonical sign bytes together with the
// public key that verifies it.
type Signature struct {
	Signature   []byte
	PubKeyBytes []byte
	PubKeyType  string
}

// Signer signs transactions on behalf of the feeder account. Implementations
// may hold a local key or talk to a hardware wallet; callers do not care which.
type Signer interface {
	// Address returns the bech32 address of the feeder account.
	Address() string
	Sign(ctx context.Context, signBytes []byte) (*Signature, error)
}
