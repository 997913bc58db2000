// Package server собирает HTTP обработчики сервера синхронизации.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/gophsync/internal/server/handlers"
	"github.com/iudanet/gophsync/internal/server/middleware"
	"github.com/iudanet/gophsync/internal/server/service"
)

// Dependencies зависимости HTTP слоя
type Dependencies struct {
	Service    *service.Service
	Store      handlers.Pinger
	Changes    handlers.ChangeSubscriber
	Tokens     middleware.TokenValidator
	Logger     *slog.Logger
	Version    string
	RateLimit  int
	RateWindow time.Duration
}

// Server HTTP обработчик с маршрутами API
type Server struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

// New wires routes and middleware.
//
//	GET  /health
//	POST /v1/workspaces/{workspaceId}/mutations
//	GET  /v1/accounts/{accountId}/socket
func New(deps Dependencies) *Server {
	limiter := middleware.NewRateLimiter(deps.RateLimit, deps.RateWindow, deps.Logger)
	auth := middleware.AuthMiddleware(deps.Logger, deps.Tokens)

	health := handlers.NewHealthHandler(deps.Logger, deps.Store, deps.Version)
	mutations := handlers.NewMutationsHandler(deps.Logger, deps.Service)
	socket := handlers.NewSocketHandler(deps.Logger, deps.Service, deps.Changes)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("POST /v1/workspaces/{workspaceId}/mutations", auth(limiter.Middleware(http.HandlerFunc(mutations.Handle))))
	mux.Handle("GET /v1/accounts/{accountId}/socket", auth(http.HandlerFunc(socket.Handle)))

	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(deps.Logger, []string{"/health"})(handler)
	handler = middleware.RecoveryMiddleware(deps.Logger)(handler)

	return &Server{handler: handler, limiter: limiter}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops background work of the middleware.
func (s *Server) Close() {
	s.limiter.Stop()
}
