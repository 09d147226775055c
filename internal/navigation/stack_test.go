package navigation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStack() *Stack {
	s := NewStack()
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func TestNavigateCountryPersonBack(t *testing.T) {
	s := newTestStack()

	s.Navigate("Country", Name("France"))
	s.Navigate("Person", Name("Macron"))
	s.Navigate("Back", nil)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, KindCountry, entries[0].Kind)
	assert.Equal(t, Name("France"), entries[0].Payload)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, entries[0], cur)
}

func TestBackRevealsPreviousEntry(t *testing.T) {
	pushes := []struct {
		kind    string
		payload Payload
	}{
		{"Org", Name("NATO")},
		{"Country", Name("Norway")},
		{"Person", Name("Jens Stoltenberg")},
		{"Party", PartyRef{Name: "Labour Party", Country: "Norway"}},
		{"Concept", Name("Collective defence")},
	}

	for n := 1; n <= len(pushes); n++ {
		s := newTestStack()
		for _, p := range pushes[:n] {
			require.True(t, s.Navigate(p.kind, p.payload).Changed)
		}
		before := s.Entries()
		s.Navigate(Back, nil)

		cur, ok := s.Current()
		if n == 1 {
			assert.False(t, ok, "stack with one entry must be empty after Back")
			continue
		}
		require.True(t, ok)
		assert.Equal(t, before[n-2], cur)
	}
}

func TestBackOnEmptyIsNoop(t *testing.T) {
	s := newTestStack()
	tok := s.Token()

	eff := s.Navigate(Back, nil)
	assert.False(t, eff.Changed)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Live(tok))

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestTabSwitchClearsOverlay(t *testing.T) {
	for _, tab := range Tabs {
		t.Run(string(tab), func(t *testing.T) {
			s := newTestStack()
			s.Navigate("Countries", nil)
			s.Navigate("Country", Name("Chile"))
			s.Navigate("Person", Name("Salvador Allende"))

			eff := s.Navigate(string(tab), nil)
			assert.True(t, eff.Changed)
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, tab, s.Tab())
			_, ok := s.Current()
			assert.False(t, ok)
		})
	}
}

func TestLogoutClearsAndReturnsHome(t *testing.T) {
	s := newTestStack()
	s.Navigate("Quiz", nil)
	s.Navigate("Ideology", Name("Anarchism"))

	eff := s.Navigate(Logout, nil)
	assert.True(t, eff.LoggedOut)
	assert.Equal(t, TabHome, s.Tab())
	assert.Equal(t, 0, s.Len())
}

func TestUnknownIntentIsNoop(t *testing.T) {
	s := newTestStack()
	s.Navigate("Country", Name("Peru"))
	tok := s.Token()

	for _, typ := range []string{"", "country", "Settings", "Forward"} {
		assert.False(t, s.Navigate(typ, Name("x")).Changed, typ)
	}
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Live(tok))
}

func TestMismatchedPayloadIsNoop(t *testing.T) {
	s := newTestStack()

	assert.False(t, s.Navigate("Party", Name("Labour")).Changed)
	assert.False(t, s.Navigate("Reader", PartyRef{Name: "x"}).Changed)
	assert.False(t, s.Navigate("Country", ReaderRef{Title: "Leviathan"}).Changed)
	assert.False(t, s.Navigate("Country", Name("  ")).Changed)
	assert.False(t, s.Navigate("Country", nil).Changed)
	assert.Equal(t, 0, s.Len())

	assert.True(t, s.Navigate("Reader", ReaderRef{Title: "Leviathan", Author: "Hobbes"}).Changed)
}

func TestEntryIDsAreUnique(t *testing.T) {
	s := NewStack()
	seen := map[string]bool{}
	for range 50 {
		s.Navigate("Country", Name("France"))
	}
	for _, e := range s.Entries() {
		assert.NotEmpty(t, e.ID)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestTokenInvalidatedByMutation(t *testing.T) {
	s := newTestStack()
	s.Navigate("Country", Name("France"))
	tok := s.Token()
	assert.True(t, s.Live(tok))

	s.Navigate("Person", Name("Macron"))
	assert.False(t, s.Live(tok))

	s.Navigate(Back, nil)
	assert.False(t, s.Live(tok), "returning to the same view still invalidates older work")

	// switching to the tab already shown with no overlay changes nothing
	s.Navigate(string(TabHome), nil)
	tok = s.Token()
	s.Navigate(string(TabHome), nil)
	assert.True(t, s.Live(tok))
}

func TestSnapshotRestore(t *testing.T) {
	s := newTestStack()
	s.Navigate("Organizations", nil)
	s.Navigate("Org", Name("African Union"))
	s.Navigate("Party", PartyRef{Name: "ANC", Country: "South Africa"})
	s.Navigate("Reader", ReaderRef{Title: "Long Walk to Freedom", Author: "Nelson Mandela"})

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var st State
	require.NoError(t, json.Unmarshal(data, &st))

	r := NewStack()
	require.NoError(t, r.Restore(st))
	assert.Equal(t, s.Entries(), r.Entries())
	assert.Equal(t, TabOrganizations, r.Tab())
	assert.Equal(t, s.Token(), r.Token())
}

func TestEntryJSONShape(t *testing.T) {
	e := Entry{Kind: KindParty, Payload: PartyRef{Name: "SPD", Country: "Germany"}, ID: "abc"}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Party","payload":{"name":"SPD","country":"Germany"},"id":"abc"}`, string(data))

	e = Entry{Kind: KindCountry, Payload: Name("France"), ID: "x"}
	data, err = json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Country","payload":"France","id":"x"}`, string(data))
}

func TestRestoreRejectsBadState(t *testing.T) {
	s := NewStack()
	assert.Error(t, s.Restore(State{Tab: "Settings"}))
	assert.Error(t, s.Restore(State{Entries: []Entry{{Kind: KindParty, Payload: Name("SPD")}}}))

	require.NoError(t, s.Restore(State{}))
	assert.Equal(t, TabHome, s.Tab())
}
