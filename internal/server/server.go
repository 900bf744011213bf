package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joansfix/shop-api/internal/auth"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/handlers"
)

// Server wraps the gin router and the underlying HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

// New builds the router and wires all routes. The orders group sits behind
// the bearer-token middleware; catalog and operational endpoints are public.
func New(h *handlers.Handlers, store handlers.Pinger, registry *prometheus.Registry, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/ready", handlers.Readiness(store))
	router.GET("/live", h.Live)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/products", h.ListProducts)

	orders := router.Group("/orders")
	orders.Use(auth.Middleware(cfg.Auth.TokenSecret))
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
