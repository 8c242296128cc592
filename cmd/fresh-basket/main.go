package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fresh-basket/internal/common/auth"
	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/config"
	"fresh-basket/internal/connections/database"
	"fresh-basket/internal/connections/rabbitmq"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/orderapi"
	"fresh-basket/internal/microservices/storefront"
)

func main() {
	mode := flag.String("mode", "", "order-api | storefront")
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	role := flag.String("role", "customer", "storefront: customer | staff | courier")
	actor := flag.String("actor", "", "storefront: actor reference (customer id, staff id, courier id)")
	flag.Parse()

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err)
		os.Exit(1)
	}

	switch *mode {
	case "order-api":
		if err := cfg.ValidateOrderAPI(); err != nil {
			lg.Error("config_invalid", err)
			os.Exit(1)
		}
		lg.Info("service_started", zap.String("service", "order-api"), zap.String("addr", cfg.API.ListenAddr))

		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			lg.Error("db_connect_failed", err)
			os.Exit(1)
		}
		defer db.Close()

		rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
		if err != nil {
			lg.Error("rabbitmq_connect_failed", err)
			os.Exit(1)
		}
		defer rmq.Close()

		if err := orderapi.Run(ctx, cfg, db, rmq); err != nil {
			lg.Error("fatal", err)
			os.Exit(1)
		}

	case "storefront":
		if err := cfg.Validate(); err != nil {
			lg.Error("config_invalid", err)
			os.Exit(1)
		}
		if *actor == "" {
			fmt.Fprintln(os.Stderr, "--actor is required for storefront")
			os.Exit(2)
		}
		r := domain.Role(*role)
		if !r.Valid() {
			fmt.Fprintln(os.Stderr, "--role must be customer, staff or courier")
			os.Exit(2)
		}

		token, err := auth.Mint([]byte(cfg.API.AuthSecret), *actor, r, 24*time.Hour)
		if err != nil {
			lg.Error("token_mint_failed", err)
			os.Exit(1)
		}

		sess := storefront.NewSession(cfg, r, token)
		if err := sess.Start(ctx); err != nil {
			lg.Error("session_start_failed", err)
			os.Exit(1)
		}
		defer sess.Close()

		for _, rec := range sess.Store.List() {
			fmt.Printf("%s  %-10s  %-6s  %d\n", rec.ID, rec.Status, rec.PaymentStatus, rec.TotalAmount)
		}

		<-ctx.Done()

	default:
		fmt.Fprintln(os.Stderr, "--mode is required: order-api | storefront")
		os.Exit(2)
	}
}
