// Package llm wraps calls to an external content generator with bounded
// retry, fallback absorption and tolerant JSON parsing.
package llm

import (
	"context"
	"errors"
)

// MIMEJSON is the response format hint for structured output
const MIMEJSON = "application/json"

// Tool names a generator capability the model may use
type Tool string

const (
	// ToolGoogleSearch grounds answers with web search results
	ToolGoogleSearch Tool = "googleSearch"
)

// Config carries the per-call generation options
type Config struct {
	MaxOutputTokens  int32  `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
	Tools            []Tool `json:"tools,omitempty"`
}

// Request describes a single generation call. It is built fresh per call.
type Request struct {
	Model    string `json:"model"`
	Contents string `json:"contents"`
	Config   Config `json:"config"`
}

// WantsJSON reports whether the request hints structured output
func (r Request) WantsJSON() bool {
	return r.Config.ResponseMIMEType == MIMEJSON
}

// Response carries the raw model output
type Response struct {
	Text string `json:"text"`

	// Fallback is set when Text was synthesized from a caller default
	Fallback bool `json:"-"`
}

// Generator is the external content generation collaborator
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

// Generate implements Generator
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

var (
	// ErrExhausted wraps the last failure once every attempt has failed
	ErrExhausted = errors.New("generation retries exhausted")

	// ErrEmptyResponse is returned when the generator answers with no text
	ErrEmptyResponse = errors.New("empty generation response")
)
