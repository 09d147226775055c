package navigation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		kind    Kind
		raw     string
		want    Payload
		wantErr bool
	}{
		{KindCountry, `"France"`, Name("France"), false},
		{KindConcept, `" Hegemony "`, Name("Hegemony"), false},
		{KindParty, `{"name":"Likud","country":"Israel"}`, PartyRef{Name: "Likud", Country: "Israel"}, false},
		{KindReader, `{"title":"The Prince","author":"Machiavelli"}`, ReaderRef{Title: "The Prince", Author: "Machiavelli"}, false},
		{KindCountry, `{"name":"France"}`, nil, true},
		{KindCountry, `""`, nil, true},
		{KindParty, `"Likud"`, nil, true},
		{KindParty, `{"country":"Israel"}`, nil, true},
		{KindReader, `{"author":"Machiavelli"}`, nil, true},
		{Kind("Planet"), `"Mars"`, nil, true},
	}

	for _, tt := range tests {
		got, err := DecodePayload(tt.kind, json.RawMessage(tt.raw))
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrBadPayload, "%s %s", tt.kind, tt.raw)
			continue
		}
		require.NoError(t, err, "%s %s", tt.kind, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestPayloadIDs(t *testing.T) {
	assert.Equal(t, []string{"France"}, Name("France").IDs())
	assert.Equal(t, []string{"SPD", "Germany"}, PartyRef{Name: "SPD", Country: "Germany"}.IDs())
	assert.Equal(t, []string{"Capital", "Marx"}, ReaderRef{Title: "Capital", Author: "Marx"}.IDs())
}

func TestParseKindAndTab(t *testing.T) {
	k, ok := ParseKind("Org")
	assert.True(t, ok)
	assert.Equal(t, KindOrg, k)
	assert.Equal(t, "org", k.Namespace())

	k, ok = ParseKindNamespace("discipline")
	assert.True(t, ok)
	assert.Equal(t, KindDiscipline, k)

	_, ok = ParseKind("Home")
	assert.False(t, ok)

	tab, ok := ParseTab("Almanac")
	assert.True(t, ok)
	assert.Equal(t, TabAlmanac, tab)

	_, ok = ParseTab("Back")
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	s := NewSessions()
	a := s.Get("a")
	a.Navigate("Country", Name("Japan"))
	assert.Same(t, a, s.Get("a"))
	assert.Equal(t, 1, s.Len())

	saved := State{Tab: TabQuiz, Entries: []Entry{{Kind: KindPerson, Payload: Name("Hobbes"), ID: "1"}}}
	b := s.Load("b", &saved)
	assert.Equal(t, TabQuiz, b.Tab())
	assert.Equal(t, 1, b.Len())

	// an existing stack wins over saved state
	assert.Same(t, a, s.Load("a", &saved))

	bad := State{Tab: "Nope"}
	c := s.Load("c", &bad)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, TabHome, c.Tab())

	s.Drop("a")
	assert.NotSame(t, a, s.Get("a"))
}

func TestSessionsSweepIdle(t *testing.T) {
	now := time.Date(2026, time.July, 14, 12, 0, 0, 0, time.UTC)
	s := NewSessions(WithIdleTimeout(time.Hour), WithClock(func() time.Time { return now }))

	old := s.Get("old")
	s.Get("busy")
	now = now.Add(40 * time.Minute)
	assert.Same(t, old, s.Get("old"), "touching a stack keeps it")
	s.Get("busy")

	now = now.Add(50 * time.Minute)
	s.Get("busy")
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 2, s.Len())

	now = now.Add(61 * time.Minute)
	s.Get("busy")
	assert.Equal(t, 1, s.Len(), "idle stack swept on access")
	assert.NotSame(t, old, s.Get("old"))
}

func TestSessionsWithoutTimeoutKeepStacks(t *testing.T) {
	now := time.Now()
	s := NewSessions(WithClock(func() time.Time { return now }))
	s.Get("a")
	now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx, time.Millisecond)
}
