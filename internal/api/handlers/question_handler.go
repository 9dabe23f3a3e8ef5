package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/application/services"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
	apperrors "github.com/meeplechat/boardgame-rules-assistant/backend/pkg/errors"
)

const (
	maxGameTitleLength = 200
	maxQuestionLength  = 2000
)

// QuestionService defines the orchestration operations used by the handler.
type QuestionService interface {
	AskGameQuestion(ctx context.Context, gameTitle, question string, opts *services.AskOptions) (*entities.AskResponse, error)
}

// QuestionHandler handles rules-question requests.
type QuestionHandler struct {
	service QuestionService
}

// NewQuestionHandler creates a new question handler.
func NewQuestionHandler(service QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

type askRequest struct {
	GameTitle     string `json:"gameTitle"`
	Question      string `json:"question"`
	UseV2Analysis bool   `json:"useV2Analysis,omitempty"`
}

// AskQuestion handles POST /api/questions/ask
func (h *QuestionHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var payload askRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.GameTitle = strings.TrimSpace(payload.GameTitle)
	payload.Question = strings.TrimSpace(payload.Question)

	if payload.Question == "" {
		respondWithError(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(payload.Question) > maxQuestionLength {
		respondWithError(w, http.StatusBadRequest, "question is too long")
		return
	}
	if len(payload.GameTitle) > maxGameTitleLength {
		respondWithError(w, http.StatusBadRequest, "game title is too long")
		return
	}

	resp, err := h.service.AskGameQuestion(r.Context(), payload.GameTitle, payload.Question, &services.AskOptions{
		UseV2Analysis: payload.UseV2Analysis,
	})
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to answer question")
		respondWithError(w, statusForError(err), "failed to answer question")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func statusForError(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
