// Package api exposes the sampling engine over HTTP: callers register a
// sampler by posting observed values, then draw from it or describe it.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/synthetizer/internal/api/handlers"
	"github.com/inferloop/synthetizer/internal/api/middleware"
	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// Metrics receives request and registry observations
type Metrics interface {
	middleware.RequestRecorder
	handlers.CountRecorder
}

// RouterConfig configures the API router
type RouterConfig struct {
	MaxRequestSize int64
	Logging        *middleware.LoggingConfig
}

type Router struct {
	samplerHandler *handlers.SamplerHandler
	healthHandler  *handlers.HealthHandler
	registry       *handlers.Registry
	metrics        Metrics
	config         *RouterConfig
	logger         *logrus.Logger
}

// NewRouter creates the API router. metrics may be nil.
func NewRouter(selector *sampling.Selector, metrics Metrics, config *RouterConfig, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = &RouterConfig{MaxRequestSize: constants.MaxRequestSize}
	}

	var recorder handlers.CountRecorder
	if metrics != nil {
		recorder = metrics
	}
	registry := handlers.NewRegistry(recorder)

	return &Router{
		samplerHandler: handlers.NewSamplerHandler(selector, registry, logger),
		healthHandler:  handlers.NewHealthHandler(constants.AppVersion, registry),
		registry:       registry,
		metrics:        metrics,
		config:         config,
		logger:         logger,
	}
}

// Registry returns the sampler registry served by the router
func (router *Router) Registry() *handlers.Registry {
	return router.registry
}

func (router *Router) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(router.logger))
	r.Use(middleware.NewLoggingMiddleware(router.config.Logging, router.logger).Middleware())
	if router.config.MaxRequestSize > 0 {
		r.Use(middleware.MaxBodySize(router.config.MaxRequestSize))
	}
	if router.metrics != nil {
		r.Use(middleware.Metrics(router.metrics))
	}

	r.HandleFunc("/health", router.healthHandler.GetHealth).Methods(http.MethodGet)

	api := r.PathPrefix(constants.APIPrefix).Subrouter()

	samplers := api.PathPrefix("/samplers").Subrouter()
	samplers.HandleFunc("", router.samplerHandler.CreateSampler).Methods(http.MethodPost)
	samplers.HandleFunc("", router.samplerHandler.ListSamplers).Methods(http.MethodGet)
	samplers.HandleFunc("/{id}", router.samplerHandler.DeleteSampler).Methods(http.MethodDelete)
	samplers.HandleFunc("/{id}/sample", router.samplerHandler.Sample).Methods(http.MethodGet)
	samplers.HandleFunc("/{id}/describe", router.samplerHandler.Describe).Methods(http.MethodGet)

	return r
}
