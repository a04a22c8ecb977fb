package server

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/vfs/internal/api/http"
	"github.com/GriffinCanCode/vfs/internal/api/middleware"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

// Server wraps the HTTP server and the namespace it serves
type Server struct {
	router  *gin.Engine
	http    *http.Server
	fs      *vfs.Namespace
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates the namespace, loads its image when configured and
// builds the router.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing VFS server",
		zap.String("port", cfg.Server.Port),
		zap.String("image", cfg.Disk.Image),
		zap.Uint64("disk_size", cfg.Disk.Size),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	fs := vfs.New(cfg.Disk.Size, vfs.WithLogger(logger.Logger), vfs.WithMetrics(metrics))
	if cfg.Disk.AutoLoad {
		if err := fs.LoadFromDisk(cfg.Disk.Image); err != nil {
			if !errors.Is(err, iofs.ErrNotExist) {
				return nil, fmt.Errorf("failed to load image: %w", err)
			}
			logger.Info("No disk image yet, starting empty", zap.String("image", cfg.Disk.Image))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	api.NewHandlers(fs, cfg.Disk.Image, logger.Logger).Register(router)
	api.NewMetricsHandlers(metrics, reg).Register(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		fs:      fs,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, saves the image when autosave is on
// and unmounts every volume.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var result *multierror.Error
	if err := s.http.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
	}
	if s.config.Disk.AutoSave {
		if err := s.fs.SaveToDisk(s.config.Disk.Image); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := s.fs.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	s.logger.Sync()
	return result.ErrorOrNil()
}
