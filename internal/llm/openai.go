package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// OpenAICompat talks to any chat-completions endpoint that follows the
// OpenAI wire format (OpenAI, OpenRouter, local llama.cpp or vLLM servers).
// Tools are not forwarded; such servers have no portable search tool.
type OpenAICompat struct {
	baseURL string
	http    *http.Client
}

// NewOpenAICompat creates a generator for baseURL (e.g.
// "https://api.openai.com/v1"). An empty apiKey sends no Authorization
// header. base may be nil.
func NewOpenAICompat(baseURL, apiKey string, base *http.Client) *OpenAICompat {
	if base == nil {
		base = &http.Client{Timeout: 60 * time.Second}
	}

	client := base
	if apiKey != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: apiKey,
			TokenType:   "Bearer",
		}))
		client.Timeout = base.Timeout
	}

	return &OpenAICompat{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int32           `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Generator
func (o *OpenAICompat) Generate(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model:     req.Model,
		Messages:  []chatMessage{{Role: "user", Content: req.Contents}},
		MaxTokens: req.Config.MaxOutputTokens,
	}
	if req.WantsJSON() {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, Permanent(fmt.Errorf("encode chat request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Response{Text: out.Choices[0].Message.Content}, nil
}
