package inventory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fresh-basket/internal/config"
	"fresh-basket/internal/domain"
)

// Line is one reservation request. Name rides along so shortages can be
// reported by product name, which is what carts display.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
}

// Inventory is the stock arbiter consulted at order-creation time.
type Inventory interface {
	// Reserve atomically decrements stock for every line. When any line is
	// short, nothing stays reserved and the shortages are returned.
	Reserve(ctx context.Context, lines []Line) ([]domain.StockShortage, error)
	Release(ctx context.Context, lines []Line) error
}

// RedisInventory keeps one counter per product id.
type RedisInventory struct {
	client *redis.Client
	prefix string
}

func NewRedis(cfg config.RedisConfig) (*RedisInventory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisInventory{client: client, prefix: "stock:"}, nil
}

func (r *RedisInventory) key(productID string) string { return r.prefix + productID }

func (r *RedisInventory) Reserve(ctx context.Context, lines []Line) ([]domain.StockShortage, error) {
	var reserved []Line
	var shortages []domain.StockShortage

	for _, ln := range lines {
		left, err := r.client.DecrBy(ctx, r.key(ln.ProductID), int64(ln.Quantity)).Result()
		if err != nil {
			_ = r.Release(ctx, reserved)
			return nil, fmt.Errorf("reserve %s: %w", ln.ProductID, err)
		}
		if left < 0 {
			// Undo this decrement; the line was short.
			_, _ = r.client.IncrBy(ctx, r.key(ln.ProductID), int64(ln.Quantity)).Result()
			available := int(left) + ln.Quantity
			if available < 0 {
				available = 0
			}
			shortages = append(shortages, domain.StockShortage{
				Name:      ln.Name,
				Available: available,
				Requested: ln.Quantity,
			})
			continue
		}
		reserved = append(reserved, ln)
	}

	if len(shortages) > 0 {
		_ = r.Release(ctx, reserved)
		return shortages, nil
	}
	return nil, nil
}

func (r *RedisInventory) Release(ctx context.Context, lines []Line) error {
	for _, ln := range lines {
		if err := r.client.IncrBy(ctx, r.key(ln.ProductID), int64(ln.Quantity)).Err(); err != nil {
			return fmt.Errorf("release %s: %w", ln.ProductID, err)
		}
	}
	return nil
}

// SetStock seeds or corrects a counter; used by ops tooling and tests.
func (r *RedisInventory) SetStock(ctx context.Context, productID string, quantity int) error {
	return r.client.Set(ctx, r.key(productID), quantity, 0).Err()
}

func (r *RedisInventory) Close() error { return r.client.Close() }
