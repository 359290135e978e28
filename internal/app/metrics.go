package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
)

// serveMetrics installs the Prometheus-backed meter provider and serves it
// on addr under /metrics. stop shuts down both.
func serveMetrics(addr string) (net.Addr, func(), error) {
	handler, shutdownProvider, err := observe.InitProvider()
	if err != nil {
		return nil, nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = shutdownProvider(context.Background())
		return nil, nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("app: metrics server stopped", "err", err)
		}
	}()
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = shutdownProvider(ctx)
	}
	return ln.Addr(), stop, nil
}
