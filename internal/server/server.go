// Package server hosts the tools site: static assets, the contact relay and
// a few generated documents (sitemap, robots.txt).
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/toolshub/internal/mail"
	"github.com/jmylchreest/toolshub/internal/storage"
)

// Options configures a Server.
type Options struct {
	Addr      string
	StaticDir string
	// BaseURL is the public origin used in the sitemap and robots.txt.
	BaseURL string
	Debug   bool

	ShutdownTimeout time.Duration

	// ContactRatePerMinute and ContactBurst limit submissions per client IP.
	ContactRatePerMinute int
	ContactBurst         int
	MaxMessageLength     int
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.StaticDir == "" {
		o.StaticDir = "public"
	}
	if o.BaseURL == "" {
		o.BaseURL = "https://officetoolshub.com"
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.ContactRatePerMinute <= 0 {
		o.ContactRatePerMinute = 5
	}
	if o.ContactBurst <= 0 {
		o.ContactBurst = 3
	}
	if o.MaxMessageLength <= 0 {
		o.MaxMessageLength = 5000
	}
}

// Server is the HTTP front end.
type Server struct {
	opts    Options
	logger  hclog.Logger
	store   storage.Storage
	relay   mail.Relay
	limiter *ipLimiter
	engine  *gin.Engine
}

// New creates a Server with its routes registered.
func New(opts Options, store storage.Storage, relay mail.Relay, logger hclog.Logger) *Server {
	opts.setDefaults()
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		opts:    opts,
		logger:  logger.Named("server"),
		store:   store,
		relay:   relay,
		limiter: newIPLimiter(opts.ContactRatePerMinute, opts.ContactBurst),
	}

	engine := gin.New()
	engine.Use(requestLogger(s.logger), gin.Recovery())
	s.registerRoutes(engine)
	s.engine = engine

	return s
}

// Handler returns the HTTP handler for the site.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "static_dir", s.opts.StaticDir)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", args...)
		default:
			logger.Debug("request", args...)
		}
	}
}
