// Package prompt renders the generation prompts for each content kind
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/rs/zerolog"
)

// Library holds parsed prompt templates
type Library struct {
	builtin map[string]*template.Template
	custom  map[string]*template.Template
	logger  zerolog.Logger
}

// New parses the built-in templates and, if dir is set, any
// "<name>.tmpl" overrides found there. A custom template that fails to
// parse is skipped with a warning.
func New(dir string, logger zerolog.Logger) (*Library, error) {
	lib := &Library{
		builtin: make(map[string]*template.Template, len(defaults)),
		custom:  make(map[string]*template.Template),
		logger:  logger,
	}

	for name, text := range defaults {
		t, err := template.New(name).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse built-in prompt %s: %w", name, err)
		}
		lib.builtin[name] = t
	}

	if dir == "" {
		return lib, nil
	}

	for name := range defaults {
		path := filepath.Join(dir, name+".tmpl")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("custom prompt unreadable, using default")
			continue
		}
		t, err := template.New(name).Option("missingkey=zero").Parse(string(data))
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("custom prompt invalid, using default")
			continue
		}
		lib.custom[name] = t
	}

	return lib, nil
}

// Build renders the named prompt with data. A custom template that fails
// to execute falls back to the built-in one.
func (l *Library) Build(name string, data any) (string, error) {
	if t, ok := l.custom[name]; ok {
		out, err := execute(t, data)
		if err == nil {
			return out, nil
		}
		l.logger.Warn().Err(err).Str("prompt", name).Msg("custom prompt failed, using default")
	}

	t, ok := l.builtin[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return execute(t, data)
}

// IsCustom reports whether name is served from an override
func (l *Library) IsCustom(name string) bool {
	_, ok := l.custom[name]
	return ok
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
