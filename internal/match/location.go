package match

import (
	"regexp"

	"github.com/rcavanagh/docketbill/internal/model"
)

// UnassignedMarker is rendered in place of an assignee name when a courtroom
// code has no mapping, leaving a visible blank for manual completion.
const UnassignedMarker = "____"

var codePattern = regexp.MustCompile(`\b\d{4}\b`)

// ResolveLocation extracts the first 4-digit courtroom code from text and
// resolves it against locations. Nil means no code was present (not a
// location event). A code without a mapping resolves to the unassigned
// sentinel rather than failing the event. Never returns an error.
func ResolveLocation(text string, locations map[string]string) *model.LocationAssignment {
	code := codePattern.FindString(text)
	if code == "" {
		return nil
	}

	if assignee, ok := locations[code]; ok {
		return &model.LocationAssignment{Code: code, Assignee: assignee, Known: true}
	}
	return &model.LocationAssignment{Code: code, Assignee: UnassignedMarker, Known: false}
}
