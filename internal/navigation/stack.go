package navigation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Entry is one overlay on the stack
type Entry struct {
	Kind    Kind
	Payload Payload
	ID      string
}

type entryJSON struct {
	Kind    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	ID      string          `json:"id"`
}

// MarshalJSON encodes the entry as {"type","payload","id"}
func (e Entry) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{Kind: e.Kind, Payload: payload, ID: e.ID})
}

// UnmarshalJSON decodes the payload variant that matches the entry type
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := DecodePayload(raw.Kind, raw.Payload)
	if err != nil {
		return err
	}
	*e = Entry{Kind: raw.Kind, Payload: p, ID: raw.ID}
	return nil
}

// Effect describes what a Navigate call changed
type Effect struct {
	Changed   bool
	LoggedOut bool
}

// Token is a generation stamp taken before async work. It stays live
// until the next stack mutation.
type Token uint64

// State is a serializable copy of a stack
type State struct {
	Tab        Tab     `json:"tab"`
	Entries    []Entry `json:"entries"`
	Generation uint64  `json:"generation"`
}

// Stack is the overlay navigation stack. The visible overlay is always
// the last entry; switching tabs always empties it. Safe for concurrent use.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
	tab     Tab
	gen     uint64
	newID   func() string
}

// NewStack returns an empty stack on the Home tab
func NewStack() *Stack {
	return &Stack{tab: TabHome, newID: uuid.NewString}
}

// Navigate applies a navigation intent. Overlay kinds push an entry, Back
// pops one, tabs and Home clear the stack and switch tab, Logout clears and
// returns Home. Anything else, including a payload that does not fit its
// kind, is a no-op.
func (s *Stack) Navigate(typ string, payload Payload) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind, ok := ParseKind(typ); ok {
		if payload == nil || !Accepts(kind, payload) {
			return Effect{}
		}
		s.entries = append(s.entries, Entry{Kind: kind, Payload: payload, ID: s.newID()})
		s.gen++
		return Effect{Changed: true}
	}

	switch typ {
	case Back:
		if len(s.entries) == 0 {
			return Effect{}
		}
		s.entries[len(s.entries)-1] = Entry{}
		s.entries = s.entries[:len(s.entries)-1]
		s.gen++
		return Effect{Changed: true}
	case Logout:
		s.reset(TabHome)
		return Effect{Changed: true, LoggedOut: true}
	}

	if tab, ok := ParseTab(typ); ok {
		if len(s.entries) == 0 && s.tab == tab {
			return Effect{}
		}
		s.reset(tab)
		return Effect{Changed: true}
	}

	return Effect{}
}

func (s *Stack) reset(tab Tab) {
	s.entries = nil
	s.tab = tab
	s.gen++
}

// Current returns the visible overlay, if any
func (s *Stack) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Tab returns the active primary tab
func (s *Stack) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// Len returns the stack depth
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the stack, bottom first
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Token captures the current generation
func (s *Stack) Token() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Token(s.gen)
}

// Live reports whether nothing has changed since t was taken. Results of
// async work started under t must be dropped when Live returns false.
func (s *Stack) Live(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(t) == s.gen
}

// Snapshot returns a serializable copy of the stack
func (s *Stack) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return State{Tab: s.tab, Entries: entries, Generation: s.gen}
}

// Restore replaces the stack contents with st
func (s *Stack) Restore(st State) error {
	tab := st.Tab
	if tab == "" {
		tab = TabHome
	}
	if _, ok := ParseTab(string(tab)); !ok {
		return fmt.Errorf("restore navigation: unknown tab %q", st.Tab)
	}
	for _, e := range st.Entries {
		if !Accepts(e.Kind, e.Payload) {
			return fmt.Errorf("restore navigation: %w", ErrBadPayload)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry(nil), st.Entries...)
	s.tab = tab
	s.gen = st.Generation
	return nil
}
