// Package batch runs the per-event pipeline over a whole day of events with
// graceful degradation: per-item isolation, a bounded failure quota, and a
// soft wall-clock budget.
package batch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rcavanagh/docketbill/internal/model"
)

// Outcome is the by-value result of processing one item. Deliberate skips
// (all-day, multi-day, or other intentional non-processing) carry
// Status=ItemSkipped; they never travel through the error path and never
// count against the failure quota.
type Outcome struct {
	Status model.ItemStatus
	Detail string
	Err    error
}

// Skip returns a skip outcome with the given reason.
func Skip(reason string) Outcome {
	return Outcome{Status: model.ItemSkipped, Detail: reason}
}

// Success returns a success outcome with the given detail.
func Success(detail string) Outcome {
	return Outcome{Status: model.ItemSuccess, Detail: detail}
}

// Fail returns a failure outcome carrying err.
func Fail(err error) Outcome {
	return Outcome{Status: model.ItemFailed, Err: err}
}

// ItemFunc processes the event at index i. Returning a failed outcome (or
// panicking) affects only that item; siblings keep running until a batch
// limit trips.
type ItemFunc func(ctx context.Context, i int, ev model.Event) Outcome

// Options bound one batch run.
type Options struct {
	// FailureQuota is the number of failures after which the rest of the
	// batch is abandoned. Zero means the default ceil(total * 0.5).
	FailureQuota int

	// TimeBudget is the soft wall-clock ceiling, checked before each item
	// starts; an in-flight call is never interrupted. Zero disables it.
	TimeBudget time.Duration

	// Now is the clock; nil means time.Now. Injected for tests.
	Now func() time.Time
}

// Process iterates events in input order through fn and aggregates a
// BatchResult. Every input event gets exactly one outcome, so
// Successful + Failed + Skipped == Total == len(Outcomes) always holds:
// items abandoned by a quota breach or an expired budget are recorded as
// skipped with an explanatory detail, and the corresponding result flag is
// set so the caller can tell deliberate filtering from early termination.
func Process(ctx context.Context, events []model.Event, fn ItemFunc, opts Options) model.BatchResult {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	quota := opts.FailureQuota
	if quota <= 0 {
		quota = int(math.Ceil(float64(len(events)) * 0.5))
	}

	result := model.BatchResult{
		Total:    len(events),
		Outcomes: make([]model.ItemOutcome, 0, len(events)),
	}
	started := now()

	for i, ev := range events {
		if result.QuotaExceeded || result.TimedOut {
			detail := "abandoned: failure quota exceeded"
			if result.TimedOut {
				detail = "abandoned: time budget exceeded"
			}
			result.Skipped++
			result.Outcomes = append(result.Outcomes, model.ItemOutcome{Index: i, Status: model.ItemSkipped, Detail: detail})
			continue
		}

		if opts.TimeBudget > 0 && now().Sub(started) >= opts.TimeBudget {
			result.TimedOut = true
			result.Skipped++
			result.Outcomes = append(result.Outcomes, model.ItemOutcome{Index: i, Status: model.ItemSkipped, Detail: "abandoned: time budget exceeded"})
			continue
		}

		out := runItem(ctx, fn, i, ev)

		switch out.Status {
		case model.ItemSuccess:
			result.Successful++
		case model.ItemSkipped:
			result.Skipped++
		default:
			result.Failed++
			if out.Err != nil && out.Detail == "" {
				out.Detail = out.Err.Error()
			}
			if result.Failed > quota {
				result.QuotaExceeded = true
			}
		}
		result.Outcomes = append(result.Outcomes, model.ItemOutcome{Index: i, Status: out.Status, Detail: out.Detail})
	}

	return result
}

// runItem is the per-item fault boundary: a panic inside fn becomes a failed
// outcome for that item only.
func runItem(ctx context.Context, fn ItemFunc, i int, ev model.Event) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Fail(fmt.Errorf("item %d panicked: %v", i, r))
		}
	}()
	return fn(ctx, i, ev)
}
