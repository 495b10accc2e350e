// Package server runs the sampling API and its metrics endpoint.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/synthetizer/internal/api"
	"github.com/inferloop/synthetizer/internal/observability/metrics"
	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	metricsServer *http.Server
	router        *mux.Router
	api           *api.Router
	metrics       *metrics.PrometheusMetrics
	logger        *logrus.Logger
	config        *Config
}

// Config contains server configuration
type Config struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	MetricsPort     int           `json:"metrics_port" mapstructure:"metrics_port"`
	ReadTimeout     time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	EnableMetrics   bool          `json:"enable_metrics" mapstructure:"enable_metrics"`
	EnableProfiling bool          `json:"enable_profiling" mapstructure:"enable_profiling"`
	MaxRequestSize  int64         `json:"max_request_size" mapstructure:"max_request_size"`
	TLSCertFile     string        `json:"tls_cert_file,omitempty" mapstructure:"tls_cert_file"`
	TLSKeyFile      string        `json:"tls_key_file,omitempty" mapstructure:"tls_key_file"`
}

// NewServer creates a new HTTP server instance. Samplers registered through
// the API are fitted with samplingConfig; when metrics are enabled the
// server installs its Prometheus observer on it.
func NewServer(config *Config, samplingConfig *sampling.Config, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	if samplingConfig == nil {
		samplingConfig = sampling.DefaultConfig()
	}

	server := &Server{
		logger: logger,
		config: config,
	}

	var apiMetrics api.Metrics
	if config.EnableMetrics {
		pm, err := metrics.NewPrometheusMetrics(metrics.DefaultPrometheusConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		server.metrics = pm
		apiMetrics = pm

		cfg := *samplingConfig
		cfg.Observer = pm
		samplingConfig = &cfg
	}

	selector, err := sampling.NewSelector(samplingConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler selector: %w", err)
	}

	server.api = api.NewRouter(selector, apiMetrics, &api.RouterConfig{MaxRequestSize: config.MaxRequestSize}, logger)
	server.router = server.api.SetupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	if config.EnableMetrics {
		server.setupMetricsServer()
	}

	return server, nil
}

// Start serves the API until Stop is called
func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Starting HTTP server on %s:%d", s.config.Host, s.config.Port)

	if s.metricsServer != nil {
		go func() {
			s.logger.Infof("Starting metrics server on port %d", s.config.MetricsPort)
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	var err error
	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.logger.Info("Starting HTTPS server")
		err = s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.httpServer.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Error shutting down metrics server: %v", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error shutting down HTTP server: %v", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) setupMetricsServer() {
	metricsRouter := s.metricsRouter()

	s.metricsServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.MetricsPort),
		Handler:      metricsRouter,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

func (s *Server) metricsRouter() *mux.Router {
	router := mux.NewRouter()

	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypePlainText)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if s.config.EnableProfiling {
		router.HandleFunc("/debug/pprof/", pprof.Index)
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	return router
}

// GetRouter returns the HTTP router
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// GetMetricsHandler returns the metrics server handler, or nil when
// metrics are disabled.
func (s *Server) GetMetricsHandler() http.Handler {
	if s.metricsServer == nil {
		return nil
	}
	return s.metricsServer.Handler
}

// GetConfig returns the server configuration
func (s *Server) GetConfig() *Config {
	return s.config
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            constants.DefaultHost,
		Port:            constants.DefaultPort,
		MetricsPort:     constants.DefaultMetricsPort,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		EnableMetrics:   true,
		EnableProfiling: false,
		MaxRequestSize:  constants.MaxRequestSize,
	}
}
