// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/packtrace/packtrace/internal/search"
)

// Config configures the HTTP server.
type Config struct {
	Listen string
	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero or negative disables limiting.
	RateLimit float64
	RateBurst int
	// ShutdownTimeout bounds the drain of in-flight requests on stop.
	ShutdownTimeout time.Duration
	// Ping reports store health for /healthz. Nil always reports healthy.
	Ping func(context.Context) error
}

// Server serves the packtrace HTTP API.
type Server struct {
	engine  *search.Engine
	cfg     Config
	logger  *zap.Logger
	limiter *rateLimiter
	now     func() time.Time
}

// New creates a Server. A nil logger discards logs.
func New(engine *search.Engine, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger.Named("http"),
		now:    time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	return s
}

// Handler returns the API routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", s.handleProducts)
	mux.HandleFunc("GET /api/detect-type", s.handleDetectType)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/boxes/{id}/products", s.handleBoxUnits)
	mux.HandleFunc("GET /api/pallets/{id}/boxes", s.handlePalletBoxes)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	if s.limiter != nil {
		h = rateLimitMiddleware(s.limiter)(h)
	}
	return requestIDMiddleware(s.accessLogMiddleware(h))
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled. It blocks until the
// server and its background goroutines have stopped.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.limiter != nil {
		s.limiter.startCleanup(ctx, &wg, time.Minute, 10*time.Minute)
	}

	// Requests outlive ctx so Shutdown can drain them; whatever is still
	// running when the drain ends is cancelled.
	reqCtx, cancelRequests := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRequests()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return reqCtx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", listener.Addr().String()))
		errc <- srv.Serve(listener)
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		s.logger.Info("server stopping")
		shutdownCtx, stop := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		err = srv.Shutdown(shutdownCtx)
		stop()
		if serveErr := <-errc; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
			err = serveErr
		}
	}

	cancelRequests()
	cancel()
	wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
