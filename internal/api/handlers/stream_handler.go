package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/application/services"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
)

// StreamHandler answers a question over Server-Sent Events, emitting
// research stage transitions as they happen and the final answer last.
type StreamHandler struct {
	service QuestionService
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(service QuestionService) *StreamHandler {
	return &StreamHandler{service: service}
}

type streamEvent struct {
	name string
	data interface{}
}

// StreamQuestion handles GET /api/questions/stream?game=X&q=Y&v2=1
func (h *StreamHandler) StreamQuestion(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameTitle := strings.TrimSpace(query.Get("game"))
	question := strings.TrimSpace(query.Get("q"))
	useV2 := query.Get("v2") == "1"

	if question == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	if len(question) > maxQuestionLength || len(gameTitle) > maxGameTitleLength {
		respondWithError(w, http.StatusBadRequest, "parameter too long")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan streamEvent, 8)

	go func() {
		defer close(events)

		resp, err := h.service.AskGameQuestion(r.Context(), gameTitle, question, &services.AskOptions{
			UseV2Analysis: useV2,
			OnProgress: func(stage entities.ResearchStage) {
				events <- streamEvent{name: "stage", data: map[string]string{"stage": string(stage)}}
			},
			OnResearchStart: func() {
				events <- streamEvent{name: "research_started", data: map[string]interface{}{"timestamp": time.Now()}}
			},
		})
		if err != nil {
			observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("stream question failed")
			events <- streamEvent{name: "error", data: map[string]string{"error": "failed to answer question"}}
			return
		}
		events <- streamEvent{name: "answer", data: resp}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			sendEvent(w, event.name, event.data)
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}
