package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "gpt-test",
		Timeout: timeout,
	})
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Equal(t, 100, req.MaxTokens)
		assert.InDelta(t, 0.8, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "sys", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "usr", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Hello world \n"}}]}`))
	}))
	defer srv.Close()

	text, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), CompletionRequest{
		SystemPrompt: "sys",
		UserPrompt:   "usr",
		Temperature:  0.8,
		MaxTokens:    100,
	})

	require.NoError(t, err)
	assert.Equal(t, "  Hello world \n", text)
}

func TestOpenAIClient_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), CompletionRequest{UserPrompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), CompletionRequest{UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClient_Complete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).Complete(context.Background(), CompletionRequest{UserPrompt: "x"})

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOpenAIClient_Complete_NoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), CompletionRequest{UserPrompt: "x"})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
