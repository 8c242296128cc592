package orderapi

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/sync/errgroup"

	"fresh-basket/internal/common/httpx"
	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/config"
	"fresh-basket/internal/connections/rabbitmq"
	"fresh-basket/internal/microservices/orderapi/handlers"
	"fresh-basket/internal/microservices/orderapi/inventory"
	"fresh-basket/internal/microservices/orderapi/publisher"
	"fresh-basket/internal/microservices/orderapi/repository"
	"fresh-basket/internal/microservices/orderapi/service"
	"fresh-basket/internal/shipping"
)

// Run assembles the backend and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, db *sql.DB, rmq *rabbitmq.Client) error {
	lg := logger.NewWithLevel("order-api", cfg.App.LogLevel)

	repo := repository.New(db)

	inv, err := inventory.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer inv.Close()

	pub, err := publisher.New(rmq)
	if err != nil {
		return err
	}

	est := shipping.NewHTTPEstimator(cfg.Shipping.BaseURL)

	svc := service.New(repo, inv, pub, est, lg)
	h := handlers.New(svc, []byte(cfg.API.AuthSecret))

	srv := httpx.New(cfg.API.ListenAddr, handlers.Router(h))
	lg.Info("order_api_listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return watchBroker(gctx, rmq, lg) })
	return g.Wait()
}

// watchBroker surfaces a dead broker connection in the logs; sessions keep
// working request/response, they just stop seeing pushes.
func watchBroker(ctx context.Context, rmq *rabbitmq.Client, lg *logger.Logger) error {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := rmq.Ping(); err != nil {
				lg.Error("push_broker_unreachable", err)
			}
		}
	}
}
