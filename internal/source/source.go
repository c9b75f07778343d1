// Package source provides calendar event sources. The pipeline only depends
// on the Source interface; the shipped implementation reads an ICS
// subscription feed.
package source

import (
	"context"
	"time"

	"github.com/rcavanagh/docketbill/internal/model"
)

// Source returns the events overlapping [from, to), ordered by start time.
// Same-day range queries (to = from + 24h) are the common case.
type Source interface {
	Events(ctx context.Context, from, to time.Time) ([]model.Event, error)
}
