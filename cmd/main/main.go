package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RichardKnop/ragchat"
	"github.com/RichardKnop/ragchat/adapter/factory"
	promAdapter "github.com/RichardKnop/ragchat/adapter/prometheus"
	"github.com/RichardKnop/ragchat/adapter/rest"
	"github.com/RichardKnop/ragchat/adapter/tiktoken"
	"github.com/RichardKnop/ragchat/pkg/config"
	"github.com/RichardKnop/ragchat/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("config: ", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer zapLogger.Sync()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Sugar().With("error", err).Error("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, zapLogger *zap.Logger) error {
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	zapLogger.Sugar().With(
		"models", registry.ModelLabels(),
		"retrievers", registry.RetrieverLabels(),
	).Info("loaded selections")

	clients := factory.New(cfg.Backends, factory.WithLogger(zapLogger))
	defer clients.Close()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := promAdapter.New(promRegistry)

	tokens := tiktoken.New(tiktoken.WithEncoding(cfg.Pipeline.TokenEncoding))
	if err := tokens.Load(); err != nil {
		// Counting keeps failing and prompts are sent untruncated.
		zapLogger.Sugar().With("error", err).Warn("token encoding unavailable, prompt budgeting disabled")
	}

	rc := ragchat.New(
		registry,
		clients,
		clients,
		ragchat.WithTokenCounter(tokens),
		ragchat.WithObserver(metrics),
		ragchat.WithCallTimeout(cfg.Pipeline.CallTimeout),
		ragchat.WithLogger(zapLogger),
	)

	restAdapter := rest.New(
		rc,
		registry,
		rest.WithAnswerTimeout(cfg.HTTP.AnswerTimeout),
		rest.WithMiddleware(metrics.Middleware),
		rest.WithMetricsHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})),
		rest.WithLogger(zapLogger),
	)

	httpServer := &http.Server{
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		Addr:              cfg.HTTP.Addr,
		Handler:           restAdapter.Router(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLogger.Sugar().With("address", cfg.HTTP.Addr).Info("listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		zapLogger.Info("stopped serving new connections")
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownRelease()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		zapLogger.Info("graceful shutdown complete")
		return nil
	})

	return g.Wait()
}
