package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fresh-basket/internal/common/auth"
	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/orderapi/inventory"
	"fresh-basket/internal/microservices/orderapi/repository"
)

// deliveryWindow is added to the creation time as the initial estimate.
const deliveryWindow = 45 * time.Minute

type OrderService struct {
	repo      repository.OrderRepositoryInterface
	inventory inventory.Inventory
	publisher Publisher
	estimator Estimator
	lg        *logger.Logger
}

func NewOrderService(repo repository.OrderRepositoryInterface, inv inventory.Inventory,
	pub Publisher, est Estimator, lg *logger.Logger) OrderServiceInterface {
	return &OrderService{repo: repo, inventory: inv, publisher: pub, estimator: est, lg: lg}
}

func (s *OrderService) Create(ctx context.Context, owner auth.Actor, in CreateOrderInput) (domain.OrderRecord, error) {
	if len(in.Items) == 0 {
		return domain.OrderRecord{}, ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return domain.OrderRecord{}, fmt.Errorf("%w: bad quantity for %s", ErrEmptyOrder, it.ProductID)
		}
	}
	if !in.PaymentMethod.Valid() {
		return domain.OrderRecord{}, ErrUnknownMethod
	}

	addr, ok, err := s.repo.ResolveAddress(ctx, owner.Ref, in.AddressID)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("resolve address: %w", err)
	}
	if !ok {
		return domain.OrderRecord{}, ErrUnknownAddress
	}

	ids := make([]string, len(in.Items))
	for i, it := range in.Items {
		ids[i] = it.ProductID
	}
	snapshots, err := s.repo.ProductSnapshots(ctx, ids)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("load product snapshots: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	lines := make([]inventory.Line, 0, len(in.Items))
	for _, it := range in.Items {
		snap, ok := snapshots[it.ProductID]
		if !ok {
			return domain.OrderRecord{}, fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductID)
		}
		items = append(items, domain.OrderItem{
			ProductRef:    it.ProductID,
			NameSnapshot:  snap.Name,
			ImageSnapshot: snap.Image,
			Unit:          snap.Unit,
			Quantity:      it.Quantity,
			UnitPrice:     snap.Price,
		})
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Name: snap.Name, Quantity: it.Quantity})
	}

	shortages, err := s.inventory.Reserve(ctx, lines)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("reserve stock: %w", err)
	}
	if len(shortages) > 0 {
		return domain.OrderRecord{}, &domain.StockConflictError{Items: shortages}
	}

	rec := domain.OrderRecord{
		ID:              uuid.NewString(),
		OwnerRef:        owner.Ref,
		Status:          domain.StatusPending,
		Items:           items,
		CustomerName:    addr.Name,
		CustomerPhone:   addr.Phone,
		CustomerAddress: addr.Address,
		ShippingFee:     0,
		Discount:        in.Discount,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   domain.PaymentUnpaid,
		CreatedAt:       time.Now().UTC(),
	}
	rec.EstimatedDelivery = rec.CreatedAt.Add(deliveryWindow)

	fee, err := s.estimator.Estimate(ctx, addr.Lat, addr.Lng, rec.Subtotal())
	if err != nil {
		_ = s.inventory.Release(ctx, lines)
		return domain.OrderRecord{}, fmt.Errorf("%w: %v", ErrShippingUnavailable, err)
	}
	rec.ShippingFee = fee
	rec.TotalAmount = rec.Subtotal() + rec.ShippingFee - rec.Discount

	if err := s.repo.CreateOrderTx(ctx, rec); err != nil {
		_ = s.inventory.Release(ctx, lines)
		return domain.OrderRecord{}, fmt.Errorf("persist order: %w", err)
	}

	s.publish(ctx, domain.PushEvent{
		Event:   domain.EventOrderNew,
		OrderID: rec.ID,
		Order:   &rec,
	})

	s.lg.Info("order_created",
		zap.String("order_id", rec.ID),
		zap.String("owner", owner.Ref),
		zap.Int64("total", rec.TotalAmount))
	return rec, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.OrderRecord, error) {
	rec, ok, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderRecord{}, err
	}
	if !ok {
		return domain.OrderRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (s *OrderService) ListMine(ctx context.Context, ownerRef string) ([]domain.OrderRecord, error) {
	return s.repo.ListByOwner(ctx, ownerRef)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.OrderRecord, error) {
	return s.repo.ListAll(ctx)
}

func (s *OrderService) Transition(ctx context.Context, actor auth.Actor, id string,
	action domain.Action, reason string, expected domain.Status) (domain.OrderRecord, error) {

	if !action.Valid() {
		return domain.OrderRecord{}, domain.ErrInvalidTransition
	}

	rec, ok, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderRecord{}, err
	}
	if !ok {
		return domain.OrderRecord{}, domain.ErrNotFound
	}

	// The caller acted on a stale copy; tell it so instead of applying an
	// edge it never asked for.
	if expected != "" && expected != rec.Status {
		return domain.OrderRecord{}, domain.ErrConflict
	}

	target := action.Target()
	if err := domain.Check(rec.Status, target, actor.Role); err != nil {
		return domain.OrderRecord{}, err
	}

	if action == domain.ActionCancel {
		if actor.Role == domain.RoleCustomer && rec.PaymentStatus == domain.PaymentPaid {
			return domain.OrderRecord{}, domain.ErrInvalidTransition
		}
		if reason == "" && domain.ReasonRequired(rec.Status, target) {
			return domain.OrderRecord{}, ErrReasonRequired
		}
	}

	courierRef := ""
	if actor.Role == domain.RoleCourier && action == domain.ActionAccept {
		courierRef = actor.Ref
	}

	updated, ok, err := s.repo.UpdateStatusTx(ctx, id, rec.Status, target, actor.Ref, reason, courierRef)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return domain.OrderRecord{}, domain.ErrConflict
	}

	event := domain.EventOrderUpdated
	if actor.Role == domain.RoleCourier {
		event = domain.EventCourierOrderUpdate
	}
	s.publish(ctx, domain.PushEvent{
		Event:     event,
		OrderID:   updated.ID,
		NewStatus: updated.Status,
		Order:     &updated,
	})

	s.lg.Info("order_transitioned",
		zap.String("order_id", id),
		zap.String("action", string(action)),
		zap.String("by", string(actor.Role)),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

func (s *OrderService) PaymentLink(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error) {
	if method != domain.PaymentGatewayA && method != domain.PaymentGatewayB {
		return "", ErrUnknownMethod
	}
	rec, ok, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNotFound
	}
	if rec.PaymentStatus == domain.PaymentPaid {
		return "", ErrAlreadyPaid
	}
	// Gateway integration is an external collaborator; the link shape is all
	// this core owes the client.
	return fmt.Sprintf("https://pay.example.com/%s/checkout/%s", method, orderID), nil
}

func (s *OrderService) publish(ctx context.Context, ev domain.PushEvent) {
	if err := s.publisher.PublishPush(ctx, ev); err != nil {
		s.lg.Error("push_publish_failed", err,
			zap.String("event", ev.Event),
			zap.String("order_id", ev.OrderID))
	}
}
