package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/assignsphere/backend/internal/bids"
	"github.com/assignsphere/backend/internal/closeout"
	"github.com/assignsphere/backend/internal/config"
	"github.com/assignsphere/backend/internal/db"
	"github.com/assignsphere/backend/internal/identity"
	"github.com/assignsphere/backend/internal/notify"
	"github.com/assignsphere/backend/internal/payments"
	"github.com/assignsphere/backend/internal/projects"
	"github.com/assignsphere/backend/internal/router"
	"github.com/assignsphere/backend/internal/storage"
	"github.com/assignsphere/backend/internal/tasks"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL")

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied")

	// Event fan-out: always the in-process hub behind /api/events, plus the
	// broker when one is configured. A missing broker degrades to hub-only.
	hub := notify.NewHub()
	events := notify.Publisher(hub)
	if cfg.RabbitMQ.URL != "" {
		amqpPub, err := notify.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			slog.Warn("RabbitMQ unavailable, events stay in-process only", "error", err)
		} else {
			defer amqpPub.Close()
			events = notify.Multi(hub, amqpPub)
		}
	}

	files, err := storage.NewMinioStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey,
		cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL, logger)
	if err != nil {
		slog.Error("Failed to create object store client", "error", err)
		os.Exit(1)
	}

	identityRepo := identity.NewRepository(pool)
	identitySvc := identity.NewService(identityRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	identityHandler := identity.NewHandler(identitySvc, files, logger)

	projectsRepo := projects.NewRepository(pool)
	projectsSvc := projects.NewService(projectsRepo, events, logger)
	projectsHandler := projects.NewHandler(projectsSvc, files, logger)

	pricing := bids.Pricing{
		MultiplierNum: cfg.Pricing.MultiplierNum,
		MultiplierDen: cfg.Pricing.MultiplierDen,
	}
	bidsRepo := bids.NewRepository(pool)
	bidsSvc := bids.NewService(bidsRepo, projectsRepo, identityRepo, pricing, events, logger)
	bidsHandler := bids.NewHandler(bidsSvc, logger)

	tasksRepo := tasks.NewRepository(pool)
	tasksSvc := tasks.NewService(tasksRepo)
	tasksHandler := tasks.NewHandler(tasksSvc, logger)

	// Payments: insert func is set after the River client exists (breaks the
	// init cycle between the payment service and the job client).
	var insertMu sync.Mutex
	var insertFn payments.InsertCloseBiddingTxFunc
	insertCloseBidding := func(ctx context.Context, tx pgx.Tx, args closeout.CloseBiddingArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	paymentsRepo := payments.NewRepository(pool)
	paymentsSvc := payments.NewService(pool, paymentsRepo, tasksRepo, projectsRepo,
		identityRepo, payments.NewAutoApproveGateway(), insertCloseBidding, logger)
	paymentsHandler := payments.NewHandler(paymentsSvc, logger)

	workers := river.NewWorkers()
	river.AddWorker(workers, closeout.NewCloseBiddingWorker(bidsSvc, identityRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args closeout.CloseBiddingArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	handler := router.New(router.Deps{
		Identity:       identityHandler,
		Projects:       projectsHandler,
		Bids:           bidsHandler,
		Tasks:          tasksHandler,
		Payments:       paymentsHandler,
		Events:         &notify.StreamHandler{Hub: hub, Log: logger},
		Tokens:         identitySvc,
		AdminKeyHash:   cfg.Auth.AdminKeyHash,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}).Handler(handler)

	if err := riverClient.Start(ctx); err != nil {
		slog.Error("Failed to start River client", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.Server.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River shutdown failed", "error", err)
	}
}
