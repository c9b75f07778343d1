package model

// ItemStatus is the tri-state fate of one batch item. Skips are deliberate
// non-processing signaled by value, never by error.
type ItemStatus string

const (
	ItemSuccess ItemStatus = "success"
	ItemFailed  ItemStatus = "failed"
	ItemSkipped ItemStatus = "skipped"
)

// ItemOutcome records what happened to the event at Index.
type ItemOutcome struct {
	Index  int        `json:"index"`
	Status ItemStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// BatchResult aggregates per-item outcomes for one batch.
// Invariant: Successful + Failed + Skipped == Total == len(Outcomes).
type BatchResult struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Outcomes   []ItemOutcome `json:"outcomes"`

	// TimedOut is set when the elapsed-time budget expired before the loop
	// finished; QuotaExceeded when the failure quota was breached. In either
	// case the remaining items are recorded as skipped with a detail message.
	TimedOut      bool `json:"timed_out,omitempty"`
	QuotaExceeded bool `json:"quota_exceeded,omitempty"`
}
