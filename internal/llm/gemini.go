package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini generates content through Google's Gemini API
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini generator. httpClient may be nil.
func NewGemini(ctx context.Context, apiKey string, httpClient *http.Client) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// Generate implements Generator
func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Contents), geminiConfig(req.Config))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.Code, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return &Response{Text: resp.Text()}, nil
}

func geminiConfig(c Config) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  c.MaxOutputTokens,
		ResponseMIMEType: c.ResponseMIMEType,
	}
	for _, t := range c.Tools {
		switch t {
		case ToolGoogleSearch:
			cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}
	}
	// the API rejects a JSON mime type combined with search grounding
	if len(cfg.Tools) > 0 {
		cfg.ResponseMIMEType = ""
	}
	return cfg
}
