package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"fresh-basket/internal/connections/rabbitmq"
	"fresh-basket/internal/domain"
)

// Push broadcasts lifecycle events to every connected session via the
// orders.push fanout.
type Push struct {
	client *rabbitmq.Client
}

func New(client *rabbitmq.Client) (*Push, error) {
	if err := client.DeclarePushExchange(); err != nil {
		return nil, fmt.Errorf("declare push exchange: %w", err)
	}
	return &Push{client: client}, nil
}

func (p *Push) PublishPush(ctx context.Context, ev domain.PushEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal push event: %w", err)
	}
	headers := amqp.Table{
		"x-event":      ev.Event,
		"x-message-id": uuid.NewString(),
	}
	return p.client.Publish(ctx, rabbitmq.PushExchange, "", body, headers)
}
