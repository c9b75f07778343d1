package model

import "time"

// PersonEntry maps a normalized last-name key to a known client.
// Keys are unique within one refresh cycle; the whole table is replaced
// wholesale on refresh, never merged.
type PersonEntry struct {
	Key       string `json:"key"`        // Normalized (lowercase, trimmed) last name
	ID        string `json:"id"`         // Opaque downstream identifier
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the person's full name for rendering. A row with both
// name fields blank falls back to its lookup key so renders never carry an
// empty name.
func (p PersonEntry) DisplayName() string {
	switch {
	case p.FirstName == "" && p.LastName == "":
		return p.Key
	case p.FirstName == "":
		return p.LastName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// VocabularyEntry maps a set of keywords to one category of billable
// activity and the description template used to render it.
type VocabularyEntry struct {
	Category      string   `json:"category"`       // e.g. "Court Appearance"
	Keywords      []string `json:"keywords"`       // Matched case-insensitively against titles
	Template      string   `json:"template"`       // Description template with placeholders
	LocationEvent bool     `json:"location_event"` // Whether the description depends on a courtroom code
}

// LocationAssignment resolves a 4-digit courtroom code to an assignee name.
// Known is false when the code was extracted but has no mapping; that is a
// valid outcome, not an error.
type LocationAssignment struct {
	Code     string `json:"code"`
	Assignee string `json:"assignee"`
	Known    bool   `json:"known"`
}

// RefreshState is the single shared field backing the once-per-day refresh
// guard. A nil LastRefresh means the reference data has never been refreshed.
type RefreshState struct {
	LastRefresh *time.Time `json:"last_refresh"`
}
