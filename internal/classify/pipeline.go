// Package classify implements the event classification engine: entity and
// vocabulary matching, courtroom resolution, description rendering, and
// billing-duration quantization.
package classify

import (
	"github.com/rcavanagh/docketbill/internal/match"
	"github.com/rcavanagh/docketbill/internal/model"
)

// Tables holds one refresh cycle's reference data. Slices must be in stable
// load order; matching tie-breaks depend on it.
type Tables struct {
	People     []model.PersonEntry
	Vocabulary []model.VocabularyEntry
	Locations  map[string]string
}

// Classify runs the full per-event pipeline and returns an immutable result.
// Lookup misses are valid outcomes; Classify itself cannot fail.
//
// The order is load-bearing: the matched person's key is stripped from the
// title before vocabulary matching so a last name never collides with a
// keyword, while courtroom codes are extracted from the original title
// because stripping never affects digits.
func Classify(event model.Event, tables Tables) model.ClassificationResult {
	person := matchPerson(event.Title, tables.People)

	cleanTitle := event.Title
	if person != nil {
		cleanTitle = match.StripKey(event.Title, person.Key)
	}

	vocab := matchVocabulary(cleanTitle, tables.Vocabulary)

	var loc *model.LocationAssignment
	if vocab != nil && vocab.LocationEvent {
		loc = match.ResolveLocation(event.Title, tables.Locations)
	}

	return model.ClassificationResult{
		Person:     person,
		Vocabulary: vocab,
		Location:   loc,
		Summary:    RenderSummary(event.Title, vocab, person, loc),
		Units:      Quantize(event.Start, event.End),
	}
}

func matchPerson(title string, people []model.PersonEntry) *model.PersonEntry {
	candidates := make([]match.Candidate, len(people))
	for i, p := range people {
		candidates[i] = match.Candidate{Key: p.Key, Ref: i}
	}

	best, ok := match.Best(title, candidates)
	if !ok {
		return nil
	}
	entry := people[best.Ref]
	return &entry
}

// matchVocabulary ranks keywords globally across all entries: the longest
// matched keyword wins regardless of which category it belongs to.
func matchVocabulary(title string, vocabulary []model.VocabularyEntry) *model.VocabularyEntry {
	var candidates []match.Candidate
	for i, v := range vocabulary {
		for _, kw := range v.Keywords {
			candidates = append(candidates, match.Candidate{Key: kw, Ref: i})
		}
	}

	best, ok := match.Best(title, candidates)
	if !ok {
		return nil
	}
	entry := vocabulary[best.Ref]
	return &entry
}
