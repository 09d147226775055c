package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	lib, err := New("", zerolog.Nop())
	require.NoError(t, err)

	out, err := lib.Build(Country, map[string]string{"Name": "France"})
	require.NoError(t, err)
	assert.Contains(t, out, `"France"`)
	assert.Contains(t, out, "JSON")

	out, err = lib.Build(Party, map[string]string{"Name": "SPD", "Country": "Germany"})
	require.NoError(t, err)
	assert.Contains(t, out, `"SPD" of Germany`)

	out, err = lib.Build(Party, map[string]string{"Name": "SPD"})
	require.NoError(t, err)
	assert.NotContains(t, out, `"SPD" of`)

	for _, name := range Names() {
		_, err := lib.Build(name, map[string]any{})
		assert.NoError(t, err, name)
	}
}

func TestBuildUnknown(t *testing.T) {
	lib, err := New("", zerolog.Nop())
	require.NoError(t, err)

	_, err = lib.Build("horoscope", nil)
	assert.Error(t, err)
}

type quizVars struct {
	Topic string
	Count int
}

func TestCustomOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "country.tmpl"), []byte("Tell me about {{.Name}}."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "person.tmpl"), []byte("{{.Name"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.tmpl"), []byte("{{.Topic.Missing}}"), 0o600))

	lib, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, lib.IsCustom(Country))
	assert.False(t, lib.IsCustom(Person), "unparsable override is skipped")

	out, err := lib.Build(Country, map[string]string{"Name": "Chile"})
	require.NoError(t, err)
	assert.Equal(t, "Tell me about Chile.", out)

	out, err = lib.Build(Person, map[string]string{"Name": "Locke"})
	require.NoError(t, err)
	assert.Contains(t, out, "biography")

	// a custom template that fails at execution falls back to the default
	out, err = lib.Build(Quiz, quizVars{Topic: "Federalism", Count: 5})
	require.NoError(t, err)
	assert.Contains(t, out, "Federalism")
}
