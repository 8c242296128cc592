package repository

import (
	"context"
	"database/sql"

	"fresh-basket/internal/domain"
)

// DeliveryAddress is the resolved snapshot for an address-book id. The
// coordinate feeds the shipping-rate lookup; the rest is frozen onto the
// order.
type DeliveryAddress struct {
	Name    string
	Phone   string
	Address string
	Lat     float64
	Lng     float64
}

// ProductSnapshot freezes the catalog fields copied onto an order item.
type ProductSnapshot struct {
	Name  string
	Image string
	Unit  string
	Price int64
}

type OrderRepositoryInterface interface {
	CreateOrderTx(ctx context.Context, rec domain.OrderRecord) error
	GetOrder(ctx context.Context, id string) (domain.OrderRecord, bool, error)
	ListByOwner(ctx context.Context, ownerRef string) ([]domain.OrderRecord, error)
	ListAll(ctx context.Context) ([]domain.OrderRecord, error)

	// UpdateStatusTx moves id from->to under row lock. ok=false means the
	// stored status was no longer `from` when the lock was taken.
	UpdateStatusTx(ctx context.Context, id string, from, to domain.Status,
		changedBy, reason, courierRef string) (domain.OrderRecord, bool, error)

	ResolveAddress(ctx context.Context, ownerRef, addressID string) (DeliveryAddress, bool, error)
	ProductSnapshots(ctx context.Context, ids []string) (map[string]ProductSnapshot, error)
}

type Repository struct {
	OrderRepo OrderRepositoryInterface
}

func New(db *sql.DB) *Repository {
	return &Repository{OrderRepo: NewOrderRepository(db)}
}
