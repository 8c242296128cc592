package service

import (
	"context"
	"errors"

	"fresh-basket/internal/common/auth"
	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/orderapi/inventory"
	"fresh-basket/internal/microservices/orderapi/repository"
)

// Validation failures the handlers translate into problem responses.
var (
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrUnknownAddress      = errors.New("address id is not bound to this customer")
	ErrUnknownProduct      = errors.New("unknown product in order")
	ErrShippingUnavailable = errors.New("shipping rate unavailable")
	ErrReasonRequired      = errors.New("cancellation reason is required")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrAlreadyPaid         = errors.New("order is already paid")
)

// Publisher pushes lifecycle events to connected sessions. Publish failures
// never fail the request; the channel guarantees nothing anyway and views
// re-fetch on mount.
type Publisher interface {
	PublishPush(ctx context.Context, ev domain.PushEvent) error
}

// Estimator is the external shipping-rate collaborator.
type Estimator interface {
	Estimate(ctx context.Context, lat, lng float64, subtotal int64) (int64, error)
}

type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	AddressID     string
	Items         []CreateOrderItem
	Discount      int64
	PaymentMethod domain.PaymentMethod
}

type OrderServiceInterface interface {
	Create(ctx context.Context, owner auth.Actor, in CreateOrderInput) (domain.OrderRecord, error)
	Get(ctx context.Context, id string) (domain.OrderRecord, error)
	ListMine(ctx context.Context, ownerRef string) ([]domain.OrderRecord, error)
	ListAll(ctx context.Context) ([]domain.OrderRecord, error)
	Transition(ctx context.Context, actor auth.Actor, id string, action domain.Action,
		reason string, expected domain.Status) (domain.OrderRecord, error)
	PaymentLink(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error)
}

type Service struct {
	OrderService OrderServiceInterface
}

func New(repo *repository.Repository, inv inventory.Inventory, pub Publisher,
	est Estimator, lg *logger.Logger) *Service {
	return &Service{
		OrderService: NewOrderService(repo.OrderRepo, inv, pub, est, lg),
	}
}
