package checkout

import (
	"context"

	"go.uber.org/zap"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/storefront/apiclient"
	"fresh-basket/internal/microservices/storefront/payment"
	"fresh-basket/internal/microservices/storefront/store"
)

// API is the slice of the backend client the orchestrator needs.
type API interface {
	CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest) (apiclient.CreateOrderResponse, error)
	GetOrder(ctx context.Context, id string) (domain.OrderRecord, error)
}

// Invoice must be fully populated when requested.
type Invoice struct {
	CompanyName string
	TaxCode     string
	Email       string
	Address     string
}

func (inv Invoice) complete() bool {
	return inv.CompanyName != "" && inv.TaxCode != "" && inv.Email != "" && inv.Address != ""
}

// Input is everything a checkout submission carries besides the cart.
type Input struct {
	AddressID      string
	Discount       int64
	PaymentMethod  domain.PaymentMethod
	Invoice        *Invoice
	PolicyAccepted bool
}

// Result reports what a submission produced. OrderID is set as soon as the
// backend reserved stock, even when the payment branch failed afterwards.
type Result struct {
	OrderID     string
	Order       *domain.OrderRecord
	RedirectURL string
}

// Orchestrator validates checkout input, reserves stock by creating the
// order, and routes payment. Validation failures never reach the network.
type Orchestrator struct {
	api    API
	router payment.Router
	store  *store.Store
	lg     *logger.Logger
}

func New(api API, router payment.Router, st *store.Store, lg *logger.Logger) *Orchestrator {
	return &Orchestrator{api: api, router: router, store: st, lg: lg}
}

// Validate runs the client-side ladder in order and returns the first
// distinct failure reason, or nil.
func Validate(cart *Cart, in Input) *domain.ValidationError {
	if cart == nil || cart.Empty() {
		return &domain.ValidationError{Reason: domain.ReasonEmptyCart}
	}
	if in.AddressID == "" {
		return &domain.ValidationError{Reason: domain.ReasonMissingAddress}
	}
	if in.Invoice != nil && !in.Invoice.complete() {
		return &domain.ValidationError{Reason: domain.ReasonIncompleteInvoice}
	}
	if !in.PolicyAccepted {
		return &domain.ValidationError{Reason: domain.ReasonPolicyNotAccepted}
	}
	return nil
}

// Submit runs the full checkout flow. On a GatewayError the returned Result
// still carries the order id: the order exists, pending and unpaid, and that
// inconsistency is accepted rather than rolled back.
func (o *Orchestrator) Submit(ctx context.Context, cart *Cart, in Input) (Result, error) {
	if verr := Validate(cart, in); verr != nil {
		return Result{}, verr
	}

	req := apiclient.CreateOrderRequest{
		AddressID:     in.AddressID,
		Discount:      in.Discount,
		PaymentMethod: in.PaymentMethod,
	}
	for _, it := range cart.Items() {
		req.Items = append(req.Items, apiclient.CreateOrderItem{
			ProductID: it.ProductRef,
			Quantity:  it.Quantity,
		})
	}
	if in.Invoice != nil {
		req.InvoiceInfo = &apiclient.InvoiceInfo{
			CompanyName: in.Invoice.CompanyName,
			TaxCode:     in.Invoice.TaxCode,
			Email:       in.Invoice.Email,
			Address:     in.Invoice.Address,
		}
	}

	resp, err := o.api.CreateOrder(ctx, req)
	if err != nil {
		if sc, ok := err.(*domain.StockConflictError); ok {
			cart.MarkUnavailable(sc.AffectedNames())
		}
		return Result{}, err
	}

	res := Result{OrderID: resp.OrderID, Order: resp.Order}

	// Fetch the full record when creation returned only the id. Best effort:
	// the id alone is still usable.
	if res.Order == nil {
		if rec, err := o.api.GetOrder(ctx, resp.OrderID); err == nil {
			res.Order = &rec
		} else {
			o.lg.Warn("order_fetch_after_create_failed",
				zap.String("order_id", resp.OrderID), zap.Error(err))
		}
	}
	if res.Order != nil {
		o.store.Put(*res.Order)
	}
	cart.Clear()

	o.lg.Info("order_created",
		zap.String("order_id", res.OrderID),
		zap.String("payment_method", string(in.PaymentMethod)))

	if in.PaymentMethod == domain.PaymentCOD {
		return res, nil
	}

	url, err := o.router.Route(ctx, res.OrderID, in.PaymentMethod)
	if err != nil {
		// The order stays pending/unpaid; surface the gateway failure with
		// the id so the caller can retry payment later.
		return res, err
	}
	res.RedirectURL = url
	return res, nil
}
