package payment

import (
	"context"

	"fresh-basket/internal/domain"
)

// Router finalizes payment for a freshly created order: cash on delivery
// ends locally, gateway methods yield a redirect target.
type Router interface {
	Route(ctx context.Context, orderID string, method domain.PaymentMethod) (redirectURL string, err error)
}

// LinkAPI is the slice of the backend client that creates payment links.
type LinkAPI interface {
	CreatePaymentLink(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error)
}

type GatewayRouter struct {
	api LinkAPI
}

func NewRouter(api LinkAPI) *GatewayRouter { return &GatewayRouter{api: api} }

func (r *GatewayRouter) Route(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error) {
	if method == domain.PaymentCOD {
		return "", nil
	}
	url, err := r.api.CreatePaymentLink(ctx, orderID, method)
	if err != nil {
		if _, ok := err.(*domain.GatewayError); ok {
			return "", err
		}
		return "", &domain.GatewayError{Err: err}
	}
	return url, nil
}
