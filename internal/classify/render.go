package classify

import (
	"regexp"
	"strings"

	"github.com/rcavanagh/docketbill/internal/match"
	"github.com/rcavanagh/docketbill/internal/model"
)

// Template placeholders recognized by RenderSummary.
const (
	placeholderClient    = "{Client}"
	placeholderFirstName = "{FirstName}"
	placeholderLastName  = "{LastName}"
	placeholderJudge     = "{Judge}"
)

// genericClient stands in for person placeholders when no person matched.
// A visible marker, never a silently dropped token.
const genericClient = "[client]"

var leftoverPlaceholder = regexp.MustCompile(`\{[A-Za-z]+\}`)

// RenderSummary builds the natural-language billing description for one
// classified event. Pure function: no I/O, no global state.
//
// Without a vocabulary match it falls back to "Meeting with <person>" when a
// person matched, else the original title unchanged. With a match it
// substitutes every placeholder in the entry's template; tokens that cannot
// be filled are replaced with explicit markers so no raw placeholder ever
// survives into the output.
func RenderSummary(title string, vocab *model.VocabularyEntry, person *model.PersonEntry, loc *model.LocationAssignment) string {
	if vocab == nil {
		if person != nil {
			return "Meeting with " + displayNameOrGeneric(person)
		}
		return title
	}

	out := vocab.Template

	if person != nil {
		out = strings.ReplaceAll(out, placeholderClient, displayNameOrGeneric(person))
		out = strings.ReplaceAll(out, placeholderFirstName, person.FirstName)
		out = strings.ReplaceAll(out, placeholderLastName, person.LastName)
	} else {
		out = strings.ReplaceAll(out, placeholderClient, genericClient)
		out = strings.ReplaceAll(out, placeholderFirstName, genericClient)
		out = strings.ReplaceAll(out, placeholderLastName, genericClient)
	}

	assignee := match.UnassignedMarker
	if loc != nil {
		assignee = loc.Assignee
	}
	out = strings.ReplaceAll(out, placeholderJudge, assignee)

	// Any placeholder this version does not know still gets a visible marker.
	out = leftoverPlaceholder.ReplaceAllStringFunc(out, func(tok string) string {
		return "[" + strings.ToLower(strings.Trim(tok, "{}")) + "]"
	})

	return out
}

func displayNameOrGeneric(person *model.PersonEntry) string {
	if name := person.DisplayName(); name != "" {
		return name
	}
	return genericClient
}
