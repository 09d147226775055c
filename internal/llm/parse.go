package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// SafeParse decodes raw as a single JSON value of type T. Any failure
// (empty input, truncated or fenced JSON, prose, trailing data, a shape
// that does not fit T) returns fallback unchanged. It never panics.
func SafeParse[T any](raw string, fallback T) T {
	v, err := Parse[T](raw)
	if err != nil {
		return fallback
	}
	return v
}

// Parse is SafeParse without the fallback, for callers that need the reason
func Parse[T any](raw string) (T, error) {
	var v T
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return v, errors.New("empty input")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return v, errors.New("null value")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero T
		return zero, errors.New("trailing data after JSON value")
	}
	return v, nil
}
