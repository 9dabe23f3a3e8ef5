package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplechat/boardgame-rules-assistant/backend/pkg/config"
	apperrors "github.com/meeplechat/boardgame-rules-assistant/backend/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(&config.OpenAIConfig{
		APIKey:         "test-key",
		Model:          "gpt-4o-mini",
		RateLimitRPM:   600,
		RateLimitBurst: 10,
	})
	require.NoError(t, err)
	c.baseURL = baseURL
	return c
}

func responsesBody(text string) string {
	return `{"output":[{"content":[{"type":"output_text","text":` + mustJSON(text) + `}]}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestNewClient_MissingKeyIsFatal(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeConfiguration))

	_, err = NewClient(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeConfiguration))
}

func TestAskGameQuestion_Success(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(responsesBody("Place a worker on the build action.")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.AskGameQuestion(context.Background(), "Ark Nova", "How do I build an enclosure?")

	require.NoError(t, err)
	assert.Equal(t, "Place a worker on the build action.", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotPayload["model"])

	input, ok := gotPayload["input"].([]interface{})
	require.True(t, ok)
	require.Len(t, input, 2)
	user := input[1].(map[string]interface{})
	content := user["content"].(string)
	assert.Contains(t, content, "Ark Nova")
	assert.Contains(t, content, "How do I build an enclosure?")
}

func TestAskGameQuestion_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.AskGameQuestion(context.Background(), "Ark Nova", "question")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeRateLimit))
}

func TestAskGameQuestion_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.AskGameQuestion(context.Background(), "Ark Nova", "question")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeAPI))
}

func TestAskGameQuestion_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output": [`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.AskGameQuestion(context.Background(), "Ark Nova", "question")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeParsing))
}

func TestAskGameQuestion_MissingOutputText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[{"content":[{"type":"reasoning","text":""}]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.AskGameQuestion(context.Background(), "Ark Nova", "question")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrorTypeParsing))
}

func TestAskGameQuestion_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, "http://unused.invalid")
	_, err := c.AskGameQuestion(ctx, "Ark Nova", "question")

	require.Error(t, err)
}

func TestBuildRulesUserPrompt(t *testing.T) {
	prompt := buildRulesUserPrompt("Wingspan", "Can I play two birds in one turn?")
	assert.Contains(t, prompt, "Wingspan")
	assert.Contains(t, prompt, "Can I play two birds in one turn?")
	assert.False(t, strings.HasPrefix(prompt, " "))
}

func TestAskGameQuestion_ConcurrentCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responsesBody("Shuffle and draw five.")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := c.AskGameQuestion(context.Background(), "Ark Nova", "question")
			assert.NoError(t, err)
			assert.Equal(t, "Shuffle and draw five.", answer)
		}()
	}
	wg.Wait()
}

func TestTokenBucket_DisabledWhenNegative(t *testing.T) {
	assert.Nil(t, newTokenBucket(-1, 5))
}

func TestTokenBucket_WaitRespectsContext(t *testing.T) {
	b := newTokenBucketWithRate(60, 1)
	require.NoError(t, b.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}
