// Package api exposes the assistant over HTTP.
//
// Endpoints:
//
//	POST   /api/v1/chat/ask                      - answer a question
//	POST   /api/v1/conversations                 - create a conversation
//	GET    /api/v1/conversations                 - list conversations
//	GET    /api/v1/conversations/{id}            - get one conversation
//	DELETE /api/v1/conversations/{id}            - delete a conversation
//	GET    /api/v1/conversations/{id}/messages   - list its messages
//	GET    /health                               - liveness probe
//	GET    /ready                                - readiness probe
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finaipro/colombiagpt/internal/conversation"
	"github.com/finaipro/colombiagpt/internal/log"
	"github.com/finaipro/colombiagpt/internal/rag"
)

const (
	// DefaultAddr is where the server listens when no address is given.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout  = 30 * time.Second
	WriteTimeout = 120 * time.Second
	IdleTimeout  = 120 * time.Second
)

// Server is the HTTP server for the assistant's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health        *HealthHandler
	chat          *ChatHandler
	conversations *ConversationHandler
}

// NewServer creates a server with all routes registered.
func NewServer(pipeline *rag.Pipeline, conversations *conversation.Store, pool *pgxpool.Pool, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:           mux,
		logger:        logger,
		health:        NewHealthHandler(pool, logger),
		chat:          NewChatHandler(pipeline, conversations, logger),
		conversations: NewConversationHandler(conversations, logger),
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.conversations.RegisterRoutes(mux)

	return s
}

// Handler returns the mux with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
