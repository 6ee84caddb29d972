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

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/api"
	"github.com/ashureev/biaslens/internal/middleware"
	"github.com/ashureev/biaslens/internal/rpc"
	"github.com/ashureev/biaslens/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, WebSocket chat and optional gRPC health server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, err := setup(os.Stdout)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("Starting server", "port", cfg.Port, "grpc_port", cfg.GRPCPort, "version", Version)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.close()

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	b, err := buildBackends(ctx, cfg, logger, &cleanup)
	if err != nil {
		return err
	}
	transcript, err := buildTranscriptLogger(cfg, logger, &cleanup)
	if err != nil {
		return err
	}

	graph := agent.NewGraph(agent.GraphConfig{
		Classifier: classifier,
		Generator:  buildGenerator(ctx, cfg),
		Repository: b.repo,
		Notifier:   b.notifier,
		Logger:     logger,
	})
	service := agent.NewService(graph, b.conversations, transcript, logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	api.NewHealthHandler(b.pingers, cfg.Timeout.HealthCheck).RegisterHealth(r)
	api.NewHandler(service, b.repo, cfg.AllowedOrigins).RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: cfg.Timeout.Read,
		IdleTimeout: cfg.Timeout.Idle,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen on grpc port %s: %w", cfg.GRPCPort, err)
		}
		deps := make([]rpc.Pinger, 0, len(b.pingers))
		for _, p := range b.pingers {
			deps = append(deps, p)
		}
		health := rpc.NewServer(logger, 0, deps...)
		g.Go(func() error { return health.Serve(gctx, lis) })
	}

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}
