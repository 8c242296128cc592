package storefront

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/config"
	"fresh-basket/internal/connections/rabbitmq"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/storefront/apiclient"
	"fresh-basket/internal/microservices/storefront/checkout"
	"fresh-basket/internal/microservices/storefront/eventsync"
	"fresh-basket/internal/microservices/storefront/payment"
	"fresh-basket/internal/microservices/storefront/store"
	"fresh-basket/internal/microservices/storefront/transition"
	"fresh-basket/internal/shipping"
)

// Session is one signed-in client: a store, one push subscription, and the
// role-bound services. Built on login, torn down on logout.
type Session struct {
	ID   string
	role domain.Role

	Store       *store.Store
	Transitions transition.Service
	Checkout    *checkout.Orchestrator
	// Shipping quotes delivery fees for the checkout view; re-invoked on
	// every coordinate or subtotal change, never defaulted on failure.
	Shipping shipping.Estimator

	api    *apiclient.Client
	sync   *eventsync.Sync
	lg     *logger.Logger
	cancel context.CancelFunc
}

func NewSession(cfg *config.Config, role domain.Role, token string) *Session {
	id := uuid.NewString()
	lg := logger.NewWithLevel("storefront", cfg.App.LogLevel)

	st := store.Init(lg)
	api := apiclient.New(cfg.API.BaseURL, token)
	dial := func() (*rabbitmq.Client, error) { return rabbitmq.Dial(cfg.RabbitMQ) }

	return &Session{
		ID:          id,
		role:        role,
		Store:       st,
		Transitions: transition.ForRole(role, api, st, lg),
		Checkout:    checkout.New(api, payment.NewRouter(api), st, lg),
		Shipping:    shipping.NewHTTPEstimator(cfg.Shipping.BaseURL),
		api:         api,
		sync:        eventsync.New(dial, id, st, lg),
		lg:          lg,
	}
}

func (s *Session) Role() domain.Role { return s.role }

// Start fetches the full order list as the correctness backstop, then opens
// the push subscription in the background.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial order fetch: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go func() {
		_ = s.sync.Run(runCtx)
	}()

	s.lg.Info("session_started",
		zap.String("session", s.ID),
		zap.String("role", string(s.role)),
		zap.Int("orders", s.Store.Len()))
	return nil
}

// Refresh re-fetches the role's order list and replaces the store wholesale.
// Customers see only their own orders; staff and couriers see the shared
// fulfillment feed.
func (s *Session) Refresh(ctx context.Context) error {
	var (
		recs []domain.OrderRecord
		err  error
	)
	if s.role == domain.RoleCustomer {
		recs, err = s.api.ListMine(ctx)
	} else {
		recs, err = s.api.ListStaff(ctx)
	}
	if err != nil {
		return err
	}
	s.Store.ReplaceAll(recs)
	return nil
}

// Close tears the session down: subscription first, then the store loop.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.Store.Teardown()
	s.lg.Info("session_closed", zap.String("session", s.ID))
}
