package deposits

import (
	"context"

	"github.com/google/uuid"
)

// Gateway represents a connector to the mobile-money provider.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, req PushRequest) (PushResult, error)
}

// PushRequest asks the provider to prompt the user's phone for payment.
type PushRequest struct {
	Phone  string
	Amount uint64
}

// PushResult carries the provider's correlation identifiers. The checkout
// request id keys the eventual callback back to the deposit.
type PushResult struct {
	CheckoutRequestID string
	MerchantRequestID string
}

// StaticGateway simulates a provider that always accepts the push.
type StaticGateway struct{}

// InitiateSTKPush acknowledges the request with synthetic identifiers.
func (StaticGateway) InitiateSTKPush(_ context.Context, _ PushRequest) (PushResult, error) {
	return PushResult{
		CheckoutRequestID: "ws_CO_" + uuid.NewString(),
		MerchantRequestID: uuid.NewString(),
	}, nil
}
