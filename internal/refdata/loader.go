// Package refdata loads and validates the shared reference tables and holds
// the once-per-day refresh guard.
package refdata

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rcavanagh/docketbill/internal/classify"
	"github.com/rcavanagh/docketbill/internal/log"
	"github.com/rcavanagh/docketbill/internal/model"
	"github.com/rcavanagh/docketbill/internal/retry"
)

// Store is the reference-data service the loader reads from. Each load is
// idempotent and may fail transiently.
type Store interface {
	People(ctx context.Context) ([]model.PersonEntry, error)
	Vocabulary(ctx context.Context) ([]model.VocabularyEntry, error)
	Locations(ctx context.Context) (map[string]string, error)
}

const (
	cacheKeyTables = "tables"
)

var locationCodePattern = regexp.MustCompile(`^\d{4}$`)

// Loader loads the three reference tables with retry, validates them at the
// load boundary, and caches the result so one process never hammers the
// service. The cache is flushed when a refresh replaces the tables wholesale.
type Loader struct {
	store          Store
	cache          *gocache.Cache
	maxAttempts    int
	initialBackoff time.Duration
}

// NewLoader creates a Loader caching tables for ttl.
func NewLoader(store Store, ttl time.Duration, maxAttempts int, initialBackoff time.Duration) *Loader {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Loader{
		store:          store,
		cache:          gocache.New(ttl, 2*ttl),
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
	}
}

// Load returns the current reference tables, from cache when fresh.
func (l *Loader) Load(ctx context.Context) (classify.Tables, error) {
	if cached, found := l.cache.Get(cacheKeyTables); found {
		return cached.(classify.Tables), nil
	}

	var tables classify.Tables
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		tables, err = l.loadAll(ctx)
		return err
	}, l.maxAttempts, l.initialBackoff)
	if err != nil {
		return classify.Tables{}, err
	}

	l.cache.SetDefault(cacheKeyTables, tables)
	return tables, nil
}

// Invalidate drops the cached tables, forcing the next Load to hit the
// service. Called after a refresh replaces the tables.
func (l *Loader) Invalidate() {
	l.cache.Flush()
}

func (l *Loader) loadAll(ctx context.Context) (classify.Tables, error) {
	people, err := l.store.People(ctx)
	if err != nil {
		return classify.Tables{}, err
	}
	vocab, err := l.store.Vocabulary(ctx)
	if err != nil {
		return classify.Tables{}, err
	}
	locations, err := l.store.Locations(ctx)
	if err != nil {
		return classify.Tables{}, err
	}

	return classify.Tables{
		People:     validatePeople(people),
		Vocabulary: validateVocabulary(vocab),
		Locations:  validateLocations(locations),
	}, nil
}

// validatePeople normalizes keys and drops rows that cannot participate in
// matching: empty keys, missing IDs, duplicate keys (first occurrence wins,
// keeping table order stable for tie-breaks).
func validatePeople(people []model.PersonEntry) []model.PersonEntry {
	seen := make(map[string]bool, len(people))
	out := make([]model.PersonEntry, 0, len(people))
	for _, p := range people {
		p.Key = strings.ToLower(strings.TrimSpace(p.Key))
		if p.Key == "" || p.ID == "" {
			log.Debug("dropping invalid person row", "key", p.Key, "id", p.ID)
			continue
		}
		if seen[p.Key] {
			log.Debug("dropping duplicate person key", "key", p.Key)
			continue
		}
		seen[p.Key] = true
		out = append(out, p)
	}
	return out
}

func validateVocabulary(vocab []model.VocabularyEntry) []model.VocabularyEntry {
	out := make([]model.VocabularyEntry, 0, len(vocab))
	for _, v := range vocab {
		keywords := make([]string, 0, len(v.Keywords))
		for _, kw := range v.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if v.Category == "" || v.Template == "" || len(keywords) == 0 {
			log.Debug("dropping invalid vocabulary row", "category", v.Category)
			continue
		}
		v.Keywords = keywords
		out = append(out, v)
	}
	return out
}

func validateLocations(locations map[string]string) map[string]string {
	out := make(map[string]string, len(locations))
	for code, assignee := range locations {
		code = strings.TrimSpace(code)
		if !locationCodePattern.MatchString(code) || strings.TrimSpace(assignee) == "" {
			log.Debug("dropping invalid location row", "code", code)
			continue
		}
		out[code] = strings.TrimSpace(assignee)
	}
	return out
}

// Describe summarizes table sizes for logging.
func Describe(t classify.Tables) string {
	return fmt.Sprintf("people=%d vocabulary=%d locations=%d", len(t.People), len(t.Vocabulary), len(t.Locations))
}
