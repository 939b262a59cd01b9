package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/michaelbrown/crucible/internal/config"
	"github.com/michaelbrown/crucible/internal/runner"
	"github.com/michaelbrown/crucible/internal/storage"
)

// Server is the HTTP server for the Crucible web API. It is a thin routing
// layer: all execution semantics live in the runner service.
type Server struct {
	cfg    *config.Config
	store  storage.Store
	svc    *runner.Service
	chats  *ChatManager
	router chi.Router
	logger *logrus.Entry
	http   *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, store storage.Store, svc *runner.Service) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		svc:    svc,
		chats:  NewChatManager(),
		router: chi.NewRouter(),
		logger: logrus.WithField("component", "server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		// Code execution service
		r.Post("/execute", s.handleExecute)
		r.Post("/validate", s.handleValidate)
		r.Post("/format", s.handleFormat)
		r.Get("/languages", s.handleListLanguages)
		r.Get("/templates/{language}", s.handleGetTemplate)
		r.Get("/runs", s.handleListRuns)

		// Conversations
		r.Get("/conversations", s.handleListConversations)
		r.Post("/conversations", s.handleCreateConversation)
		r.Get("/conversations/{id}", s.handleGetConversation)
		r.Delete("/conversations/{id}", s.handleDeleteConversation)
		r.Get("/conversations/{id}/export", s.handleExportConversation)

		// Messages
		r.Get("/conversations/{id}/messages", s.handleGetMessages)
		r.Post("/conversations/{id}/messages", s.handleSendMessage)

		// WebSocket (no JSON content-type)
		r.Get("/conversations/{id}/ws", s.handleWebSocket)
	})

	// SPA fallback
	r.Handle("/*", spaHandler())
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.WithField("addr", addr).Info("crucible server starting")
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
