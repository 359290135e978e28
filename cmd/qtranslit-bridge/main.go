// Command qtranslit-bridge serves transliteration requests over a WebSocket
// and exposes Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/qtranslit/internal/bridge"
	"github.com/kobzarvs/qtranslit/internal/config"
	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
	"github.com/kobzarvs/qtranslit/internal/provider"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7341", "listen address")
	debug := flag.Bool("debug", false, "write debug logs")
	flag.Parse()

	logger.InitWriter(os.Stderr, *debug)
	defer logger.Close()

	if err := run(*addr); err != nil {
		fmt.Fprintln(os.Stderr, "qtranslit-bridge:", err)
		os.Exit(1)
	}
}

func run(addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	metricsHandler, shutdownMetrics, err := observe.InitProvider()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownMetrics(ctx)
	}()

	timeout := time.Duration(cfg.Provider.TimeoutMs) * time.Millisecond
	p := provider.NewInputTools(cfg.Provider.Endpoint,
		provider.WithTimeout(timeout),
		provider.WithCandidates(cfg.Provider.Candidates),
		provider.WithBreaker(provider.NewCircuitBreaker(
			cfg.Provider.BreakerFails,
			time.Duration(cfg.Provider.BreakerResetS)*time.Second,
		)),
		provider.WithMetrics(observe.DefaultMetrics()),
	)

	mux := http.NewServeMux()
	mux.Handle("/ws", &bridge.Server{Handler: &bridge.Handler{Provider: p}, RequestTimeout: timeout})
	mux.Handle("/metrics", metricsHandler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("bridge: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("bridge: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
