// Package api serves the format catalogue, the codec and the packet archive
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for server. metrics may be nil.
func NewRouter(server *Server, apiKey string, metrics *Metrics) http.Handler {
	instrument := func(method, endpoint string, h http.HandlerFunc) http.HandlerFunc {
		if metrics == nil {
			return h
		}
		return metrics.InstrumentHandler(method, endpoint, h)
	}
	auth := apiKeyMiddleware(apiKey)
	if metrics != nil {
		auth = metrics.InstrumentAuthMiddleware(auth)
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth)

		r.Get("/health", instrument("GET", "/api/v1/health", server.handleHealth))

		// Catalogue and codec
		r.Get("/formats", instrument("GET", "/api/v1/formats", server.handleListFormats))
		r.Get("/formats/{name}", instrument("GET", "/api/v1/formats/{name}", server.handleGetFormat))
		r.Post("/formats/{name}/encode", instrument("POST", "/api/v1/formats/{name}/encode", server.handleEncode))
		r.Post("/formats/{name}/decode", instrument("POST", "/api/v1/formats/{name}/decode", server.handleDecode))

		// Archive
		r.Get("/packets", instrument("GET", "/api/v1/packets", server.handleListPackets))
		r.Get("/packets/{id}", instrument("GET", "/api/v1/packets/{id}", server.handleGetPacket))
		r.Delete("/packets/{id}", instrument("DELETE", "/api/v1/packets/{id}", server.handleDeletePacket))
	})

	return r
}

// StartServer serves the API on cfg.Server until ctx is cancelled, then
// shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, archive storage.Storage, log *zap.Logger) error {
	if cfg.Server.APIKey == "" || cfg.Server.APIKey == "auto" {
		return fmt.Errorf("server.api_key must be set (run 'serialize init' to generate one)")
	}
	if log == nil {
		log = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(reg)

	server := NewServer(cfg, archive, metrics, log)

	addr := net.JoinHostPort(cfg.Server.Bind, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, cfg.Server.APIKey, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting REST API server",
			zap.String("addr", addr),
			zap.String("metrics", fmt.Sprintf("http://%s/metrics", addr)))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
