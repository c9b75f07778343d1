package model

import "time"

// ClassificationResult is the immutable outcome of classifying one event.
// Nil pointers mean "no match"; they are valid outcomes, never errors.
type ClassificationResult struct {
	Person     *PersonEntry        `json:"person,omitempty"`
	Vocabulary *VocabularyEntry    `json:"vocabulary,omitempty"`
	Location   *LocationAssignment `json:"location,omitempty"`
	Summary    string              `json:"summary"`
	Units      float64             `json:"units"` // Billing duration in 0.2h increments
}

// BillingRecord is the record written to the downstream sink for one
// classified event. Free-text fields must be sanitized before writing.
type BillingRecord struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
	ClientID    string    `json:"client_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
}

// RunStatus is the overall outcome of one batch run.
type RunStatus string

const (
	RunSuccess        RunStatus = "SUCCESS"
	RunPartialSuccess RunStatus = "PARTIAL_SUCCESS"
	RunError          RunStatus = "ERROR"
)

// RunReport is the structured result returned to the trigger layer.
// Counts always satisfy Successful + Failed + Skipped == EventsFound
// for every event the batch reached.
type RunReport struct {
	Status         RunStatus   `json:"status"`
	RunID          string      `json:"run_id"`
	Date           string      `json:"date"` // YYYY-MM-DD of the processed day
	EventsFound    int         `json:"events_found"`
	Successful     int         `json:"successful"`
	Failed         int         `json:"failed"`
	Skipped        int         `json:"skipped"`
	RuntimeSeconds float64     `json:"runtime_seconds"`
	Errors         []string    `json:"errors,omitempty"`
	Refresh        string      `json:"refresh,omitempty"` // Refresh guard outcome for this run
	Batch          BatchResult `json:"batch"`
}
