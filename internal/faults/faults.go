// Package faults maps raw failures from external collaborators into a small
// taxonomy used to decide retry vs. abort vs. notify. Classification is
// heuristic substring matching over the error message; unmatched errors land
// in a low-confidence catch-all bucket.
package faults

import (
	"context"
	"errors"
	"strings"
)

// Category names the failure domain an error belongs to.
type Category string

const (
	CategoryTimeout      Category = "timeout"
	CategoryAuth         Category = "auth"          // authentication / secret access
	CategorySink         Category = "record_sink"   // downstream record store
	CategorySource       Category = "event_source"  // calendar source
	CategoryReference    Category = "reference"     // reference-data service
	CategoryNetwork      Category = "network"
	CategoryUnclassified Category = "unclassified"
)

// Severity indicates how loudly a failure should be surfaced.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Classification is the decision input derived from one error.
type Classification struct {
	Category  Category
	Severity  Severity
	Retryable bool
}

// Ordered: more specific domains before generic network words, and timeouts
// before everything since a timed-out sink call is still a timeout.
var domains = []struct {
	category  Category
	retryable bool
	needles   []string
}{
	{CategoryTimeout, false, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategoryAuth, true, []string{"auth", "unauthorized", "forbidden", "token", "credential", "secret"}},
	{CategorySink, true, []string{"record sink", "create record", "billing record"}},
	{CategorySource, true, []string{"event source", "calendar", "ics"}},
	{CategoryReference, true, []string{"reference", "vocabulary", "person table", "location table", "refresh-state"}},
	{CategoryNetwork, true, []string{"connection refused", "connection reset", "no such host", "network", "tls", "eof", "temporary failure"}},
}

// Validation-shaped failures are caller bugs or bad data; retrying cannot
// help regardless of which domain produced them.
var validationNeedles = []string{"invalid", "validation", "malformed", "bad request"}

// Classify maps err into the taxonomy. A nil error has no classification and
// returns the zero value.
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}

	msg := strings.ToLower(err.Error())

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Classification{Category: CategoryTimeout, Severity: SeverityHigh, Retryable: false}
	}

	validation := false
	for _, needle := range validationNeedles {
		if strings.Contains(msg, needle) {
			validation = true
			break
		}
	}

	for _, d := range domains {
		for _, needle := range d.needles {
			if strings.Contains(msg, needle) {
				return Classification{
					Category:  d.category,
					Severity:  SeverityHigh,
					Retryable: d.retryable && !validation,
				}
			}
		}
	}

	return Classification{Category: CategoryUnclassified, Severity: SeverityMedium, Retryable: false}
}
