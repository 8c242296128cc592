package eventsync

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/connections/rabbitmq"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/storefront/store"
)

// Dialer opens a fresh push-channel connection; called again after every
// transport drop.
type Dialer func() (*rabbitmq.Client, error)

// Sync holds exactly one push subscription per session and forwards valid
// lifecycle events into the store. It never replays missed events; views
// re-fetch the order list on (re)mount as the correctness backstop.
type Sync struct {
	dial      Dialer
	sessionID string
	store     *store.Store
	lg        *logger.Logger

	backoff time.Duration
}

func New(dial Dialer, sessionID string, st *store.Store, lg *logger.Logger) *Sync {
	return &Sync{
		dial:      dial,
		sessionID: sessionID,
		store:     st,
		lg:        lg,
		backoff:   2 * time.Second,
	}
}

// Run blocks until ctx is cancelled, re-subscribing after transport drops.
func (s *Sync) Run(ctx context.Context) error {
	for {
		if err := s.consumeOnce(ctx); err != nil {
			s.lg.Error("push_channel_dropped", err, zap.String("session", s.sessionID))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff):
		}
	}
}

func (s *Sync) consumeOnce(ctx context.Context) error {
	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	msgs, err := client.SubscribePush(s.sessionID)
	if err != nil {
		return err
	}
	s.lg.Info("push_channel_subscribed", zap.String("session", s.sessionID))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil // channel closed, caller re-dials
			}
			s.handle(d.Body)
		}
	}
}

// handle validates one payload and forwards it. Malformed payloads are
// logged and dropped: the channel has no redelivery, and dropping keeps the
// session alive.
func (s *Sync) handle(body []byte) {
	var ev domain.PushEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.lg.Warn("push_event_malformed", zap.Error(err))
		return
	}
	if err := ev.Validate(); err != nil {
		s.lg.Warn("push_event_invalid", zap.Error(err))
		return
	}
	s.store.Apply(ev)
	s.lg.Debug("push_event_applied",
		zap.String("event", ev.Event),
		zap.String("order_id", ev.OrderID),
		zap.String("new_status", string(ev.NewStatus)))
}
