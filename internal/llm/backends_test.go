package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestOpenAICompatGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"name\":\"France\"}"}}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAICompat(srv.URL+"/v1/", "secret", srv.Client())
	resp, err := gen.Generate(context.Background(), Request{
		Model:    "gpt-4o-mini",
		Contents: "Describe France",
		Config:   Config{MaxOutputTokens: 512, ResponseMIMEType: MIMEJSON},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"France"}`, resp.Text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.EqualValues(t, 512, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Describe France", got.Messages[0].Content)
}

func TestOpenAICompatStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := NewOpenAICompat(srv.URL, "", nil)
	_, err := gen.Generate(context.Background(), Request{Model: "m", Contents: "x"})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, IsRetryable(err))
}

func TestOpenAICompatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen := NewOpenAICompat(srv.URL, "", nil)
	_, err := gen.Generate(context.Background(), Request{Model: "m", Contents: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAICompatWithRetrier(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[]"}}]}`))
	}))
	defer srv.Close()

	r := NewRetrier(NewOpenAICompat(srv.URL, "k", nil), WithPolicy(Policy{MaxAttempts: 3}))
	resp, err := r.GenerateWithRetry(context.Background(), Request{Model: "m", Contents: "x"})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Text)
	assert.Equal(t, 2, calls)
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Config{MaxOutputTokens: 2048, ResponseMIMEType: MIMEJSON})
	assert.EqualValues(t, 2048, cfg.MaxOutputTokens)
	assert.Equal(t, MIMEJSON, cfg.ResponseMIMEType)
	assert.Empty(t, cfg.Tools)

	cfg = geminiConfig(Config{ResponseMIMEType: MIMEJSON, Tools: []Tool{ToolGoogleSearch, Tool("unknown")}})
	require.Len(t, cfg.Tools, 1)
	assert.Equal(t, &genai.GoogleSearch{}, cfg.Tools[0].GoogleSearch)
	assert.Empty(t, cfg.ResponseMIMEType)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", nil)
	assert.Error(t, err)
}
