package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/HTMLReader/internal/api/http"
	"github.com/GriffinCanCode/HTMLReader/internal/api/middleware"
	"github.com/GriffinCanCode/HTMLReader/internal/api/ws"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/config"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/watch"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	views   *render.Manager
	files   *source.FileLoader
	watcher *watch.Watcher
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	settingsPath string
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing HTML reader",
		zap.String("addr", cfg.Addr()),
		zap.String("root", cfg.Reader.Root),
		zap.String("settings", cfg.Reader.Settings),
	)

	metrics := monitoring.NewMetrics()

	store, err := settings.NewStore(cfg.Reader.Settings, logger.Component("settings"))
	if err != nil {
		return nil, err
	}
	current, err := store.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("Settings loaded", zap.String("mode", current.Mode().ID()))

	files, err := source.NewFileLoader(cfg.Reader.Root, cfg.Reader.MaxDocument)
	if err != nil {
		return nil, fmt.Errorf("invalid content root: %w", err)
	}

	var (
		remote source.Loader
		hosts  *resilience.Group
	)
	if cfg.Reader.Remote {
		opts := source.DefaultHTTPOptions()
		opts.Timeout = cfg.Reader.FetchTimeout
		opts.MaxSize = cfg.Reader.MaxDocument
		httpLoader := source.NewHTTPLoader(opts, logger.Component("fetch"))
		hosts = httpLoader.Hosts()
		hosts.OnChange(func(host string, _, to resilience.State) {
			if to == resilience.StateOpen {
				metrics.RecordBreakerOpen(host)
			}
		})
		remote = httpLoader
		logger.Info("Remote documents enabled", zap.Duration("timeout", opts.Timeout))
	}

	tracer := tracing.New("htmlreader", logger.Component("trace"))
	renderer := render.NewRenderer(logger.Component("render"), metrics, cfg.Reader.MaxDocument).WithTracer(tracer)
	views := render.NewManager(renderer, source.NewRouter(files, remote), store,
		render.ManagerOptions{Views: metrics}, logger.Component("views"))

	s := &Server{
		views:   views,
		files:   files,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}
	if path := store.Path(); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			s.settingsPath = abs
		}
	}

	if cfg.Reader.Watch {
		w, err := watch.New(cfg.Reader.WatchDebounce, s.fileChanged, logger.Component("watch"))
		if err != nil {
			logger.Warn("File watching disabled", zap.Error(err))
		} else {
			s.watcher = w
			s.syncWatch()
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.RequestLogger(logger.Component("http")))
	router.Use(middleware.SecureHeaders())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Views:        views,
		Root:         files.Root(),
		Metrics:      metrics,
		Hosts:        hosts,
		ViewsChanged: s.syncWatch,
		Logger:       logger.Component("api"),
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(views, metrics, logger.Component("ws"))
	router.GET("/ws/views/:id", wsHandler.HandleConnection)

	s.router = router
	logger.Info("Server initialized successfully")
	return s, nil
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Views returns the view manager.
func (s *Server) Views() *render.Manager {
	return s.views
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if s.watcher != nil {
		g.Go(func() error { return s.watcher.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close discards every view and flushes the logger.
func (s *Server) Close() error {
	s.views.CloseAll()
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}

// syncWatch watches exactly the files behind open local views, plus the
// settings file.
func (s *Server) syncWatch() {
	if s.watcher == nil {
		return
	}
	var paths []string
	for _, loc := range s.views.Locations() {
		p, err := s.files.Resolve(loc)
		if err != nil {
			continue
		}
		paths = append(paths, p)
	}
	if s.settingsPath != "" {
		paths = append(paths, s.settingsPath)
	}
	if err := s.watcher.Sync(paths); err != nil {
		s.logger.Warn("Failed to update watched files", zap.Error(err))
	}
}

// fileChanged re-renders the views of a changed document, or applies
// settings edited outside the server.
func (s *Server) fileChanged(path string) {
	ctx := context.Background()
	if path == s.settingsPath {
		if _, err := s.views.Settings().Load(); err != nil {
			s.logger.Warn("Ignoring unreadable settings change", zap.Error(err))
			return
		}
		s.logger.Info("Settings changed on disk, re-rendering views")
		if err := s.views.ReloadAll(ctx); err != nil {
			s.logger.Warn("Some views failed to re-render", zap.Error(err))
		}
		return
	}

	loc, err := s.files.Relative(path)
	if err != nil {
		return
	}
	for _, id := range s.views.ViewsOf(loc) {
		if _, err := s.views.Reload(ctx, id); err != nil {
			s.logger.Warn("Re-render after change failed", zap.String("file", loc), zap.Error(err))
		}
	}
}
