package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/PeakOS/backend/internal/api/http"
	"github.com/GriffinCanCode/PeakOS/backend/internal/api/middleware"
	"github.com/GriffinCanCode/PeakOS/backend/internal/api/ws"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PeakOS/backend/internal/providers/theme"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/id"
)

// streamPath is served without compression; upgraded connections cannot be
// wrapped.
const streamPath = "/stream"

// Server wraps the HTTP server and the session it exposes.
type Server struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
	loop    *session.Loop
	router  *gin.Engine
	httpSrv *http.Server
}

// NewSession builds a session with the configured apps registered.
func NewSession(cfg *config.Config, log *logging.Logger, metrics session.Recorder) (*session.Session, error) {
	persona, err := cfg.Shell.InitialPersona()
	if err != nil {
		return nil, fmt.Errorf("invalid PEAK_PERSONA: %w", err)
	}

	catalog := registry.DefaultCatalog()
	if cfg.Shell.Catalog != "" {
		catalog, err = registry.LoadCatalog(cfg.Shell.Catalog)
		if err != nil {
			return nil, err
		}
		log.Info("App catalog loaded", zap.String("path", cfg.Shell.Catalog))
	}

	apps, err := BuildApps(cfg, log)
	if err != nil {
		return nil, err
	}

	s := session.New(session.Options{
		Viewport:    cfg.Shell.Viewport(),
		Persona:     persona,
		Workspaces:  cfg.Shell.Workspaces,
		DockVisible: cfg.Shell.DockVisible,
		Light:       cfg.Shell.Light,
		Catalog:     catalog,
		Themes:      theme.NewProvider(),
		Logger:      log,
		Metrics:     metrics,
	})
	for appID, app := range apps {
		if err := s.Register(appID, app); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to register %s: %w", appID, err)
		}
	}
	return s, nil
}

// New creates a server instance from cfg.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With(zap.String("session_id", id.NewSessionID().String()))

	log.Info("Initializing PeakOS shell",
		zap.String("addr", cfg.Server.Addr()),
		zap.Strings("apps", cfg.Shell.Apps),
		zap.String("persona", cfg.Shell.Persona))

	metrics := monitoring.NewMetrics()
	s, err := NewSession(cfg, log, metrics)
	if err != nil {
		return nil, err
	}
	loop := session.NewLoop(s, log)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		log.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst))
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	apihttp.Register(router, apihttp.NewHandlers(loop, metrics, log))
	router.GET(streamPath, ws.NewHandler(loop, metrics, log, ws.Options{
		CheckOrigin: middleware.OriginChecker(cfg.Server.AllowedOrigins),
	}).HandleConnection)

	srv := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		loop:    loop,
		router:  router,
	}
	srv.httpSrv = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}
	return srv, nil
}

// Loop returns the session loop.
func (s *Server) Loop() *session.Loop {
	return s.loop
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Handler returns the root handler. Responses other than the stream are
// gzip-compressed for clients that accept it.
func (s *Server) Handler() http.Handler {
	compressed := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, streamPath) {
			s.router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done, then shuts the HTTP server down and stops
// the session loop.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpSrv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.log.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		err := s.httpSrv.Shutdown(shutdownCtx)
		stopLoop()
		<-s.loop.Done()
		if err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	_ = s.log.Sync()
	return err
}
