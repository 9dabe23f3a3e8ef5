package routes

import (
	"net/http"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/api/handlers"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/api/middleware"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	questionHandler *handlers.QuestionHandler
	streamHandler   *handlers.StreamHandler
	healthHandler   *handlers.HealthHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	questionHandler *handlers.QuestionHandler,
	streamHandler *handlers.StreamHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		questionHandler: questionHandler,
		streamHandler:   streamHandler,
		healthHandler:   healthHandler,
		metrics:         metrics,
	}
}

// SetupRoutes registers all routes and returns the wrapped handler.
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("POST /api/questions/ask", r.questionHandler.AskQuestion)
	r.mux.HandleFunc("GET /api/questions/stream", r.streamHandler.StreamQuestion)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	return handler
}
