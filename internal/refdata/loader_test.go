package refdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcavanagh/docketbill/internal/model"
)

type fakeStore struct {
	people    []model.PersonEntry
	vocab     []model.VocabularyEntry
	locations map[string]string

	peopleCalls int
	failFirst   int // number of initial People calls that fail
}

func (f *fakeStore) People(ctx context.Context) ([]model.PersonEntry, error) {
	f.peopleCalls++
	if f.peopleCalls <= f.failFirst {
		return nil, errors.New("load person table: HTTP 503")
	}
	return f.people, nil
}

func (f *fakeStore) Vocabulary(ctx context.Context) ([]model.VocabularyEntry, error) {
	return f.vocab, nil
}

func (f *fakeStore) Locations(ctx context.Context) (map[string]string, error) {
	return f.locations, nil
}

func validStore() *fakeStore {
	return &fakeStore{
		people: []model.PersonEntry{
			{Key: " Brown ", ID: "7", LastName: "Brown"},
			{Key: "brown", ID: "8", LastName: "Browne"}, // duplicate after normalization
			{Key: "", ID: "9"},                          // invalid
			{Key: "smith", ID: ""},                      // invalid
			{Key: "jones", ID: "10", LastName: "Jones"},
		},
		vocab: []model.VocabularyEntry{
			{Category: "Court", Keywords: []string{"Motion", " "}, Template: "Appeared before Judge {Judge}"},
			{Category: "", Keywords: []string{"call"}, Template: "x"}, // invalid
			{Category: "Conference", Keywords: []string{}, Template: "x"}, // invalid
		},
		locations: map[string]string{
			"1814": "Smith",
			"18x4": "Bad",  // invalid code
			"2200": "   ",  // invalid assignee
			"12345": "Too", // invalid code
		},
	}
}

func TestLoader_ValidatesAtBoundary(t *testing.T) {
	loader := NewLoader(validStore(), time.Minute, 1, 0)

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(tables.People) != 2 {
		t.Errorf("people = %d, want 2 (normalized, deduped)", len(tables.People))
	}
	if tables.People[0].Key != "brown" || tables.People[0].ID != "7" {
		t.Errorf("first person should win the duplicate key: %+v", tables.People[0])
	}
	if len(tables.Vocabulary) != 1 || tables.Vocabulary[0].Keywords[0] != "motion" {
		t.Errorf("unexpected vocabulary: %+v", tables.Vocabulary)
	}
	if len(tables.Locations) != 1 || tables.Locations["1814"] != "Smith" {
		t.Errorf("unexpected locations: %+v", tables.Locations)
	}
}

func TestLoader_CachesTables(t *testing.T) {
	store := validStore()
	loader := NewLoader(store, time.Minute, 1, 0)

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if store.peopleCalls != 1 {
		t.Errorf("expected 1 store hit with warm cache, got %d", store.peopleCalls)
	}
}

func TestLoader_InvalidateForcesReload(t *testing.T) {
	store := validStore()
	loader := NewLoader(store, time.Minute, 1, 0)

	_, _ = loader.Load(context.Background())
	loader.Invalidate()
	_, _ = loader.Load(context.Background())

	if store.peopleCalls != 2 {
		t.Errorf("expected reload after Invalidate, got %d store hits", store.peopleCalls)
	}
}

func TestLoader_RetriesTransientFailures(t *testing.T) {
	store := validStore()
	store.failFirst = 2
	loader := NewLoader(store, time.Minute, 3, time.Millisecond)

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load should succeed on third attempt: %v", err)
	}
	if store.peopleCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", store.peopleCalls)
	}
}

func TestLoader_ExhaustedRetriesFail(t *testing.T) {
	store := validStore()
	store.failFirst = 10
	loader := NewLoader(store, time.Minute, 2, time.Millisecond)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}
