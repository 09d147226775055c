// Package navigation implements the overlay navigation stack: a LIFO of
// drill-down detail views layered over a fixed set of primary tabs.
package navigation

import "strings"

// Kind is an overlay-eligible entity type
type Kind string

const (
	KindCountry    Kind = "Country"
	KindPerson     Kind = "Person"
	KindEvent      Kind = "Event"
	KindIdeology   Kind = "Ideology"
	KindOrg        Kind = "Org"
	KindParty      Kind = "Party"
	KindReader     Kind = "Reader"
	KindConcept    Kind = "Concept"
	KindDiscipline Kind = "Discipline"
	KindGeneric    Kind = "Generic"
)

// Kinds lists every overlay kind in display order
var Kinds = []Kind{
	KindCountry, KindPerson, KindEvent, KindIdeology, KindOrg,
	KindParty, KindReader, KindConcept, KindDiscipline, KindGeneric,
}

// Namespace returns the cache key namespace for the kind, e.g. "country"
func (k Kind) Namespace() string {
	return strings.ToLower(string(k))
}

// ParseKind resolves an intent type to an overlay kind
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ParseKindNamespace resolves a lowercase namespace ("country") to a kind
func ParseKindNamespace(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Namespace() == strings.ToLower(s) {
			return k, true
		}
	}
	return "", false
}

// Tab is a primary tab
type Tab string

const (
	TabHome          Tab = "Home"
	TabCountries     Tab = "Countries"
	TabIdeologies    Tab = "Ideologies"
	TabOrganizations Tab = "Organizations"
	TabAlmanac       Tab = "Almanac"
	TabQuiz          Tab = "Quiz"
	TabSaved         Tab = "Saved"
)

// Tabs lists the primary tabs
var Tabs = []Tab{TabHome, TabCountries, TabIdeologies, TabOrganizations, TabAlmanac, TabQuiz, TabSaved}

// ParseTab resolves an intent type to a primary tab
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Control intents
const (
	Back   = "Back"
	Logout = "Logout"
)
