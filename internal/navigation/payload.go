package navigation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadPayload is returned when a payload does not fit its kind
var ErrBadPayload = errors.New("payload does not match kind")

// Payload identifies the entity an overlay shows. The variants are Name,
// PartyRef and ReaderRef.
type Payload interface {
	// IDs returns the identifiers used to build cache keys
	IDs() []string
	isPayload()
}

// Name is a plain entity identifier ("France", "Liberalism")
type Name string

// PartyRef identifies a political party within a country
type PartyRef struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ReaderRef identifies a book or text for a reading guide
type ReaderRef struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (Name) isPayload()      {}
func (PartyRef) isPayload()  {}
func (ReaderRef) isPayload() {}

func (n Name) IDs() []string      { return []string{string(n)} }
func (p PartyRef) IDs() []string  { return []string{p.Name, p.Country} }
func (r ReaderRef) IDs() []string { return []string{r.Title, r.Author} }

func (n Name) String() string { return string(n) }

func (p PartyRef) String() string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + " (" + p.Country + ")"
}

func (r ReaderRef) String() string {
	if r.Author == "" {
		return r.Title
	}
	return r.Title + " by " + r.Author
}

// Accepts reports whether p is the payload variant kind expects, with its
// primary identifier filled in
func Accepts(kind Kind, p Payload) bool {
	switch v := p.(type) {
	case PartyRef:
		return kind == KindParty && strings.TrimSpace(v.Name) != ""
	case ReaderRef:
		return kind == KindReader && strings.TrimSpace(v.Title) != ""
	case Name:
		if kind == KindParty || kind == KindReader {
			return false
		}
		_, ok := ParseKind(string(kind))
		return ok && strings.TrimSpace(string(v)) != ""
	}
	return false
}

// DecodePayload builds the payload variant for kind from JSON. Country,
// Person and the other plain kinds take a JSON string; Party takes
// {"name","country"} and Reader takes {"title","author"}.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch kind {
	case KindParty:
		var v PartyRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, kind, err)
		}
		p = v
	case KindReader:
		var v ReaderRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, kind, err)
		}
		p = v
	default:
		if _, ok := ParseKind(string(kind)); !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrBadPayload, kind)
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, kind, err)
		}
		p = Name(strings.TrimSpace(v))
	}

	if !Accepts(kind, p) {
		return nil, fmt.Errorf("%w: %s: missing identifier", ErrBadPayload, kind)
	}
	return p, nil
}
