// Package runner wires the whole day-processing flow together: reference
// refresh guard, table loading, event fetch, per-event classification, and
// record writes, aggregated into a run report.
package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rcavanagh/docketbill/internal/batch"
	"github.com/rcavanagh/docketbill/internal/classify"
	"github.com/rcavanagh/docketbill/internal/faults"
	"github.com/rcavanagh/docketbill/internal/log"
	"github.com/rcavanagh/docketbill/internal/model"
	"github.com/rcavanagh/docketbill/internal/refdata"
	"github.com/rcavanagh/docketbill/internal/retry"
	"github.com/rcavanagh/docketbill/internal/sink"
	"github.com/rcavanagh/docketbill/internal/source"
)

// Refresher triggers the expensive reference rebuild. Implemented by the
// store client; the runner wraps it so the timestamp write is part of the
// refresh side effect, as the guard requires.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Runner processes one calendar day of events into billing records.
type Runner struct {
	source    source.Source
	sink      sink.Sink
	loader    *refdata.Loader
	guard     *refdata.Guard
	refresher Refresher
	tsStore   refdata.TimestampStore
	cfg       *model.Config
	now       func() time.Time

	// DryRun classifies and reports without writing to the sink.
	DryRun bool
}

// New creates a Runner.
func New(src source.Source, snk sink.Sink, loader *refdata.Loader, guard *refdata.Guard, refresher Refresher, tsStore refdata.TimestampStore, cfg *model.Config) *Runner {
	return &Runner{
		source:    src,
		sink:      snk,
		loader:    loader,
		guard:     guard,
		refresher: refresher,
		tsStore:   tsStore,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ProcessDay runs the full pipeline for the calendar day containing day.
// It always returns a report; the error is non-nil only for run-level
// failures (reference data unavailable, event source down), in which case
// the report carries status ERROR.
func (r *Runner) ProcessDay(ctx context.Context, day time.Time) (*model.RunReport, error) {
	started := r.now()
	report := &model.RunReport{
		RunID: uuid.NewString(),
		Date:  day.Format("2006-01-02"),
	}

	// Conditionally refresh the shared reference data. A guard fault is
	// logged and reported but never fatal: stale tables still classify.
	guardStatus, guardErr := r.guard.EnsureFresh(ctx, r.refreshOp)
	report.Refresh = string(guardStatus)
	switch guardStatus {
	case refdata.GuardRefreshed:
		log.Info("reference data refreshed")
		r.loader.Invalidate()
	case refdata.GuardError:
		log.Error("refresh guard fault, continuing with existing tables", guardErr)
		report.Errors = append(report.Errors, fmt.Sprintf("refresh guard: %v", guardErr))
	}

	tables, err := r.loader.Load(ctx)
	if err != nil {
		return r.finish(report, started, fmt.Errorf("load reference tables: %w", err))
	}
	log.Info("reference tables loaded", "sizes", refdata.Describe(tables))

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	events, err := r.source.Events(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return r.finish(report, started, err)
	}
	report.EventsFound = len(events)

	result := batch.Process(ctx, events, r.itemFunc(tables, report.RunID), batch.Options{
		FailureQuota: quotaFor(len(events), r.cfg.Batch.FailureQuotaFraction),
		TimeBudget:   r.cfg.Batch.TimeBudget,
		Now:          r.now,
	})

	report.Batch = result
	report.Successful = result.Successful
	report.Failed = result.Failed
	report.Skipped = result.Skipped
	for _, o := range result.Outcomes {
		if o.Status == model.ItemFailed {
			report.Errors = append(report.Errors, fmt.Sprintf("event %d: %s", o.Index, o.Detail))
		}
	}
	if result.TimedOut {
		report.Errors = append(report.Errors, "time budget exceeded, remaining events abandoned")
	}
	if result.QuotaExceeded {
		report.Errors = append(report.Errors, "failure quota exceeded, remaining events abandoned")
	}

	return r.finish(report, started, nil)
}

// itemFunc builds the per-event processor: eligibility filter, classify,
// assemble, sanitize, write.
func (r *Runner) itemFunc(tables classify.Tables, runID string) batch.ItemFunc {
	return func(ctx context.Context, i int, ev model.Event) batch.Outcome {
		if ev.AllDay {
			return batch.Skip("all-day event")
		}
		if !ev.SameDay() {
			return batch.Skip("multi-day event")
		}
		if ev.End.Before(ev.Start) {
			return batch.Skip("end before start")
		}

		result := classify.Classify(ev, tables)

		record := r.assembleRecord(ev, result, runID)
		if r.DryRun {
			log.Info("dry-run record", "description", record.Description, "hours", record.Hours)
			return batch.Success("dry-run")
		}

		if err := r.writeRecord(ctx, record); err != nil {
			log.Error("record write failed", err, "index", i, "title", ev.Title)
			return batch.Fail(err)
		}
		return batch.Success(record.Description)
	}
}

func (r *Runner) assembleRecord(ev model.Event, res model.ClassificationResult, runID string) model.BillingRecord {
	record := model.BillingRecord{
		Date:        ev.Start,
		Description: sink.Sanitize(res.Summary, r.cfg.Sink.MaxFieldLen),
		Hours:       res.Units,
		RunID:       runID,
	}
	if res.Person != nil {
		record.ClientID = res.Person.ID
	}
	if res.Vocabulary != nil {
		record.Category = sink.Sanitize(res.Vocabulary.Category, r.cfg.Sink.MaxFieldLen)
	}
	return record
}

// writeRecord writes one record, retrying with backoff only while failures
// classify as retryable. A non-retryable failure (validation, timeout) stops
// the sequence immediately, whichever attempt produces it.
func (r *Runner) writeRecord(ctx context.Context, record model.BillingRecord) error {
	_, err := r.sink.Create(ctx, record)
	if err == nil {
		return nil
	}

	c := faults.Classify(err)
	if !c.Retryable || r.cfg.Sink.MaxAttempts <= 1 {
		return err
	}

	log.Info("retrying record write", "category", string(c.Category))
	return retry.Do(ctx, func(ctx context.Context) error {
		_, err := r.sink.Create(ctx, record)
		if err != nil && !faults.Classify(err).Retryable {
			return retry.Permanent(err)
		}
		return err
	}, r.cfg.Sink.MaxAttempts-1, r.cfg.Sink.InitialBackoff)
}

// refreshOp rebuilds the reference tables and records the refresh time; the
// timestamp write is part of the refresh side effect so a failed rebuild
// leaves the old timestamp in place.
func (r *Runner) refreshOp(ctx context.Context) error {
	if err := r.refresher.Refresh(ctx); err != nil {
		return err
	}
	return r.tsStore.WriteTimestamp(ctx, r.now())
}

func (r *Runner) finish(report *model.RunReport, started time.Time, runErr error) (*model.RunReport, error) {
	report.RuntimeSeconds = r.now().Sub(started).Seconds()
	report.Status = statusFor(report, runErr)
	if runErr != nil {
		report.Errors = append(report.Errors, runErr.Error())
		log.Error("run failed", runErr, "run_id", report.RunID)
		return report, runErr
	}
	log.Info("run finished",
		"run_id", report.RunID,
		"status", string(report.Status),
		"found", report.EventsFound,
		"successful", report.Successful,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func statusFor(report *model.RunReport, runErr error) model.RunStatus {
	switch {
	case runErr != nil:
		return model.RunError
	case report.Failed == 0:
		return model.RunSuccess
	case report.Successful > 0 || report.Skipped > 0:
		return model.RunPartialSuccess
	default:
		return model.RunError
	}
}

func quotaFor(total int, fraction float64) int {
	if fraction <= 0 || fraction > 1 {
		return 0 // orchestrator applies its default
	}
	quota := int(math.Ceil(float64(total) * fraction))
	if quota < 1 {
		quota = 1
	}
	return quota
}
