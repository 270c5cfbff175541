package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"furniture-catalog/internal/api"
	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/config"
	"furniture-catalog/internal/enrich"
	"furniture-catalog/internal/events"
	"furniture-catalog/internal/export"
	"furniture-catalog/internal/logger"
	"furniture-catalog/internal/metrics"
	"furniture-catalog/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)
	log.Info("starting furniture-catalog", "app_env", cfg.AppEnv, "store_backend", cfg.Store.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	backend, err := store.Open(ctx, cfg.StoreOptions(), log.With("component", "store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Cleanup(); err != nil {
			log.Warn("closing store failed", "error", err)
		}
	}()

	// --- Engine ---
	collector := metrics.New()
	engineOpts := []budget.Option{budget.WithLogger(log), budget.WithRecorder(collector)}
	handlerOpts := []api.HandlerOption{}
	if backend.Pinger != nil {
		handlerOpts = append(handlerOpts, api.WithHealthCheck("store", backend.Pinger))
	}

	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			return fmt.Errorf("connect to message broker: %w", err)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("closing event publisher failed", "error", err)
			}
		}()
		engineOpts = append(engineOpts, budget.WithPublisher(pub))
		handlerOpts = append(handlerOpts, api.WithHealthCheck("events", pub))
		log.Info("item events enabled", "exchange", cfg.AMQP.Exchange)
	}

	engine := budget.NewEngine(backend.Store, engineOpts...)
	if _, err := engine.Budget(ctx); err != nil {
		return fmt.Errorf("initial budget: %w", err)
	}

	// --- Optional integrations ---
	if cfg.Enrich.FetchImages {
		handlerOpts = append(handlerOpts,
			api.WithImageFetcher(enrich.NewImageFetcher(cfg.Enrich.FetchTimeout), cfg.Enrich.Concurrency))
	}
	if cfg.Sheets.SpreadsheetID != "" {
		var gopts []option.ClientOption
		if cfg.Sheets.CredentialsFile != "" {
			gopts = append(gopts, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		}
		exporter, err := export.NewSheetsExporter(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, log, gopts...)
		if err != nil {
			return fmt.Errorf("google sheets: %w", err)
		}
		handlerOpts = append(handlerOpts, api.WithSheetsExporter(exporter))
		log.Info("google sheets export enabled", "sheet", cfg.Sheets.SheetName)
	}

	// --- HTTP ---
	httpHandler := api.NewHTTPHandler(engine, log, handlerOpts...)
	router := api.NewRouter(httpHandler, api.RouterConfig{
		Log:            log,
		Metrics:        collector,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      cfg.HttpServer.RateLimit,
		IsDevelopment:  !cfg.IsProduction(),
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.HttpServer.Port,
		Handler:           router,
		ReadTimeout:       cfg.HttpServer.TimeoutRead,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HttpServer.TimeoutWrite,
		IdleTimeout:       cfg.HttpServer.TimeoutIdle,
	}

	// --- gRPC ---
	grpcServer, healthServer := setupGRPCServer(log, api.NewGRPCHandler(engine, log))
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		return fmt.Errorf("listen for gRPC on port %s: %w", cfg.GrpcServer.Port, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", "port", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("gRPC server listening", "port", cfg.GrpcServer.Port)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()
		shutdown(log, httpServer, grpcServer)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func setupGRPCServer(log *slog.Logger, handler *api.GRPCHandler) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLoggingInterceptor(log)))
	api.RegisterBudgetServiceServer(s, handler)

	hs := health.NewServer()
	hs.SetServingStatus(api.BudgetServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, hs)

	reflection.Register(s)
	return s, hs
}

// shutdown drains both servers, forcing gRPC to stop if draining outlives
// shutdownTimeout.
func shutdown(log *slog.Logger, httpServer *http.Server, grpcServer *grpc.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("HTTP server graceful shutdown failed", "error", err)
	}

	select {
	case <-stopped:
	case <-ctx.Done():
		log.Warn("gRPC graceful stop timed out, forcing")
		grpcServer.Stop()
	}
}
