package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/config"
	"go.uber.org/zap"
)

// Loader produces a fresh catalog snapshot.
type Loader func(ctx context.Context) (*api.Snapshot, error)

type state struct {
	snapshot *api.Snapshot
	loadedAt time.Time
}

// Server serves catalog browsing over HTTP from an in-memory snapshot that is
// refreshed on a schedule.
type Server struct {
	cfg    config.ServerConfig
	load   Loader
	logger *zap.Logger
	echo   *echo.Echo
	state  atomic.Pointer[state]

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New builds a Server. Routes and middleware are registered immediately; no
// snapshot is loaded until Reload or Run.
func New(cfg config.ServerConfig, load Loader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 20
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 40
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		load:   load,
		logger: logger,
		ready:  make(chan struct{}),
	}
	s.echo = s.newEcho()
	return s
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = s.errorHandler

	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(panicRecovery())
	e.Use(requestID())
	e.Use(requestLogger())
	e.Use(rateLimiting(s.cfg.RateLimit, s.cfg.RateBurst))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: s.cfg.RequestTimeout,
	}))

	e.GET("/healthz", s.handleHealth)
	v1 := e.Group("/api/v1")
	v1.GET("/categories", s.handleCategories)
	v1.GET("/browse/*", s.handleBrowse)
	v1.GET("/facets/*", s.handleFacets)
	return e
}

// Handler exposes the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Reload fetches a new snapshot and swaps it in. On failure the previous
// snapshot stays in place.
func (s *Server) Reload(ctx context.Context) error {
	snap, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("catalog refresh failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("refreshing catalog: %w", err)
	}
	s.state.Store(&state{snapshot: snap, loadedAt: time.Now()})
	s.logger.Info("catalog loaded",
		zap.Int("categories", len(snap.Categories)),
		zap.Int("products", len(snap.Products)),
	)
	return nil
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Server) Snapshot() *api.Snapshot {
	if st := s.state.Load(); st != nil {
		return st.snapshot
	}
	return nil
}

// Addr returns the bound address once Run is listening.
func (s *Server) Addr() string {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run loads the catalog, starts the refresh schedule and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		close(s.ready)
		return err
	}

	scheduler, err := s.startScheduler(ctx)
	if err != nil {
		close(s.ready)
		return err
	}
	defer func() {
		<-scheduler.Stop().Done()
	}()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.echo.Listener = ln
	close(s.ready)

	s.logger.Info("serving catalog", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) startScheduler(ctx context.Context) (*cron.Cron, error) {
	cl := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithLogger(cl),
		cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		),
	)

	if s.cfg.RefreshSchedule != "" {
		if _, err := c.AddFunc(s.cfg.RefreshSchedule, func() {
			refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			_ = s.Reload(refreshCtx)
		}); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
		}
	}
	c.Start()
	return c, nil
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Sprintf("invalid %s: must satisfy %s=%s", first.Field(), first.Tag(), first.Param())
	}
	return err.Error()
}
