package transition

import (
	"context"

	"go.uber.org/zap"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/storefront/store"
)

// API is the slice of the backend client a transition strategy needs.
type API interface {
	Transition(ctx context.Context, id string, action domain.Action,
		reason string, expected domain.Status) (domain.OrderRecord, error)
}

// Service is selected once per session from the actor's role; call sites
// never branch on role again.
type Service interface {
	Role() domain.Role
	// Apply runs one lifecycle action. The advisory legality check happens
	// against the locally known record before any network call; the backend
	// remains the sole arbiter and its answer is merged into the store
	// immediately, without waiting for the push event.
	Apply(ctx context.Context, orderID string, action domain.Action, reason string) (domain.OrderRecord, error)
}

// DefaultCancelReason is used when cancelling a still-pending order without
// an explicit reason.
const DefaultCancelReason = "cancelled before confirmation"

type base struct {
	role  domain.Role
	api   API
	store *store.Store
	lg    *logger.Logger
}

func (b *base) Role() domain.Role { return b.role }

func (b *base) Apply(ctx context.Context, orderID string, action domain.Action, reason string) (domain.OrderRecord, error) {
	if !action.Valid() {
		return domain.OrderRecord{}, domain.ErrInvalidTransition
	}

	var expected domain.Status
	if rec, ok := b.store.Get(orderID); ok {
		expected = rec.Status
		if err := b.precheck(rec, action, &reason); err != nil {
			return domain.OrderRecord{}, err
		}
	} else if action == domain.ActionCancel && reason == "" {
		reason = DefaultCancelReason
	}

	updated, err := b.api.Transition(ctx, orderID, action, reason, expected)
	if err != nil {
		b.lg.Warn("transition_rejected",
			zap.String("order_id", orderID),
			zap.String("action", string(action)),
			zap.Error(err))
		return domain.OrderRecord{}, err
	}

	b.store.Put(updated)
	b.lg.Info("transition_applied",
		zap.String("order_id", orderID),
		zap.String("action", string(action)),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// precheck is advisory only: it fails fast on what the backend would reject
// anyway, using the locally known record. It may fill in the default cancel
// reason for pending orders.
func (b *base) precheck(rec domain.OrderRecord, action domain.Action, reason *string) error {
	target := action.Target()

	if action == domain.ActionCancel {
		if !domain.CanCancel(rec, b.role) {
			if domain.Check(rec.Status, target, b.role) == domain.ErrUnauthorized {
				return domain.ErrUnauthorized
			}
			return domain.ErrInvalidTransition
		}
		if *reason == "" {
			if domain.ReasonRequired(rec.Status, target) {
				return &domain.ValidationError{Reason: domain.ReasonCancelNeedsReason}
			}
			*reason = DefaultCancelReason
		}
		return nil
	}

	return domain.Check(rec.Status, target, b.role)
}

// CustomerTransitions can only cancel.
type CustomerTransitions struct{ base }

func (s *CustomerTransitions) Cancel(ctx context.Context, orderID, reason string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionCancel, reason)
}

// StaffTransitions confirms, ships, delivers and cancels.
type StaffTransitions struct{ base }

func (s *StaffTransitions) Confirm(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionConfirm, "")
}

func (s *StaffTransitions) Ship(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionShip, "")
}

func (s *StaffTransitions) Deliver(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionDeliver, "")
}

func (s *StaffTransitions) Cancel(ctx context.Context, orderID, reason string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionCancel, reason)
}

// CourierTransitions accepts, ships, delivers and declines assignments.
type CourierTransitions struct{ base }

func (s *CourierTransitions) Accept(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionAccept, "")
}

func (s *CourierTransitions) Ship(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionShip, "")
}

func (s *CourierTransitions) Deliver(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionDeliver, "")
}

func (s *CourierTransitions) Reject(ctx context.Context, orderID string) (domain.OrderRecord, error) {
	return s.Apply(ctx, orderID, domain.ActionReject, "")
}

// ForRole builds the strategy matching the session's role.
func ForRole(role domain.Role, api API, st *store.Store, lg *logger.Logger) Service {
	b := base{role: role, api: api, store: st, lg: lg}
	switch role {
	case domain.RoleStaff:
		return &StaffTransitions{base: b}
	case domain.RoleCourier:
		return &CourierTransitions{base: b}
	default:
		return &CustomerTransitions{base: b}
	}
}
