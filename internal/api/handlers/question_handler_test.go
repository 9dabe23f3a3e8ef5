package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/application/services"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	apperrors "github.com/meeplechat/boardgame-rules-assistant/backend/pkg/errors"
)

type stubQuestionService struct {
	resp      *entities.AskResponse
	err       error
	gotTitle  string
	gotQ      string
	gotOpts   *services.AskOptions
	callCount int
}

func (s *stubQuestionService) AskGameQuestion(_ context.Context, gameTitle, question string, opts *services.AskOptions) (*entities.AskResponse, error) {
	s.callCount++
	s.gotTitle = gameTitle
	s.gotQ = question
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	if opts != nil && opts.OnProgress != nil {
		opts.OnProgress(entities.StageAnalyzing)
		opts.OnProgress(entities.StageCompleted)
	}
	return s.resp, nil
}

func postAsk(t *testing.T, h *QuestionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/questions/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AskQuestion(rec, req)
	return rec
}

func TestAskQuestion_Success(t *testing.T) {
	stub := &stubQuestionService{
		resp: &entities.AskResponse{
			Answer:       "Each player takes one action per turn.",
			ResearchUsed: true,
			Sources:      []string{"https://boardgamegeek.com/boardgame/342942"},
		},
	}
	h := NewQuestionHandler(stub)

	rec := postAsk(t, h, `{"gameTitle":" Ark Nova ","question":" How do turns work? ","useV2Analysis":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Ark Nova", stub.gotTitle, "title is trimmed")
	assert.Equal(t, "How do turns work?", stub.gotQ, "question is trimmed")
	require.NotNil(t, stub.gotOpts)
	assert.True(t, stub.gotOpts.UseV2Analysis)

	var payload entities.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Each player takes one action per turn.", payload.Answer)
	assert.True(t, payload.ResearchUsed)
}

func TestAskQuestion_EmptySourceListStaysInBody(t *testing.T) {
	stub := &stubQuestionService{
		resp: &entities.AskResponse{
			Answer:       "No catalog entry matched, answering from the rulebook.",
			ResearchUsed: true,
			Sources:      []string{},
		},
	}
	h := NewQuestionHandler(stub)

	rec := postAsk(t, h, `{"gameTitle":"Obscuria","question":"Is there a mulligan rule?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`, "research with no hits still reports its empty source list")

	stub.resp = &entities.AskResponse{Answer: "Draw one card per turn."}
	rec = postAsk(t, h, `{"gameTitle":"Obscuria","question":"Is there a mulligan rule?"}`)
	assert.NotContains(t, rec.Body.String(), `"sources"`, "no research means no source list at all")
}

func TestAskQuestion_InvalidJSON(t *testing.T) {
	h := NewQuestionHandler(&stubQuestionService{})
	rec := postAsk(t, h, `{"question":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskQuestion_MissingQuestion(t *testing.T) {
	stub := &stubQuestionService{}
	h := NewQuestionHandler(stub)

	rec := postAsk(t, h, `{"gameTitle":"Ark Nova","question":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.callCount)
}

func TestAskQuestion_OverlongInputs(t *testing.T) {
	h := NewQuestionHandler(&stubQuestionService{})

	longQ := strings.Repeat("a", maxQuestionLength+1)
	rec := postAsk(t, h, `{"question":"`+longQ+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	longTitle := strings.Repeat("b", maxGameTitleLength+1)
	rec = postAsk(t, h, `{"gameTitle":"`+longTitle+`","question":"ok?"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskQuestion_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.NewValidationError("bad input"), http.StatusBadRequest},
		{"rate limit", apperrors.NewRateLimitError("slow down"), http.StatusTooManyRequests},
		{"network", apperrors.NewNetworkError("upstream down", nil), http.StatusInternalServerError},
		{"plain", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewQuestionHandler(&stubQuestionService{err: tc.err})
			rec := postAsk(t, h, `{"gameTitle":"Ark Nova","question":"How do turns work?"}`)
			assert.Equal(t, tc.want, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.Equal(t, "failed to answer question", payload["error"])
		})
	}
}

func TestStreamQuestion_EmitsStagesAndAnswer(t *testing.T) {
	stub := &stubQuestionService{
		resp: &entities.AskResponse{Answer: "Draw two cards."},
	}
	h := NewStreamHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/questions/stream?game=Wingspan&q=How+many+cards%3F&v2=1", nil)
	rec := httptest.NewRecorder()
	h.StreamQuestion(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: stage")
	assert.Contains(t, body, `"stage":"analyzing"`)
	assert.Contains(t, body, `"stage":"completed"`)
	assert.Contains(t, body, "event: answer")
	assert.Contains(t, body, "Draw two cards.")
	require.NotNil(t, stub.gotOpts)
	assert.True(t, stub.gotOpts.UseV2Analysis)
	assert.Equal(t, "Wingspan", stub.gotTitle)
}

func TestStreamQuestion_MissingQuestion(t *testing.T) {
	h := NewStreamHandler(&stubQuestionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/questions/stream?game=Wingspan", nil)
	rec := httptest.NewRecorder()
	h.StreamQuestion(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamQuestion_ServiceError(t *testing.T) {
	h := NewStreamHandler(&stubQuestionService{err: apperrors.NewNetworkError("down", nil)})

	req := httptest.NewRequest(http.MethodGet, "/api/questions/stream?q=How+many+cards%3F", nil)
	rec := httptest.NewRecorder()
	h.StreamQuestion(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, "failed to answer question")
}
