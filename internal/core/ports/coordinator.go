package ports

import (
	"context"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type RandomnessRequest struct {
	KeyHash          string
	SubscriptionId   uint64
	MinConfirmations uint16
	CallbackGasLimit uint32
	NumWords         uint32
}

// FulfillmentHandler is invoked to deliver the random words of a request,
// together with the oracle signature over the request id and the words.
type FulfillmentHandler func(
	ctx context.Context, requestId uint64, words []*big.Int, signature []byte,
) error

type RandomnessCoordinator interface {
	Address() string
	// PubKey is the oracle key every fulfillment must be signed with.
	PubKey() *secp256k1.PublicKey
	RequestRandomWords(ctx context.Context, req RandomnessRequest) (uint64, error)
	// Resume tracks again a request issued before a restart so that it can
	// still be fulfilled. Ids allocated afterwards are greater than requestId.
	Resume(ctx context.Context, requestId uint64, req RandomnessRequest) error
	RegisterFulfillmentHandler(handler FulfillmentHandler)
	Close()
}
