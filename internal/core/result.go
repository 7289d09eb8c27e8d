package core

import (
	"errors"
	"fmt"
)

// ReasonInterrupted is the skip reason for items left untouched because the
// context was cancelled.
const ReasonInterrupted = "interrupted"

// Status represents the outcome of processing a single item.
type Status int

const (
	StatusSuccess Status = iota // Item processed
	StatusSkipped               // Item intentionally left alone; see Reason
	StatusFailed                // Item failed; see Err
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result records what happened to one item (a directory, file or operation).
type Result struct {
	Subject string
	Status  Status
	Reason  string
	Err     error
}

// Report aggregates per-item results. A failing item never stops its
// siblings; the report is how callers find out afterwards.
//
// The zero value is an empty report ready for use.
type Report struct {
	Results []Result
}

// Success records a processed item.
func (r *Report) Success(subject string) {
	r.Results = append(r.Results, Result{Subject: subject, Status: StatusSuccess})
}

// Skip records an item that was deliberately not processed.
func (r *Report) Skip(subject, reason string) {
	r.Results = append(r.Results, Result{Subject: subject, Status: StatusSkipped, Reason: reason})
}

// Fail records a failed item and returns err for convenient chaining.
func (r *Report) Fail(subject string, err error) error {
	r.Results = append(r.Results, Result{Subject: subject, Status: StatusFailed, Reason: err.Error(), Err: err})
	return err
}

// Merge appends all results of other.
func (r *Report) Merge(other Report) {
	r.Results = append(r.Results, other.Results...)
}

// Count returns the number of results with the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the failed results in recording order.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every failure into one error, or returns nil when nothing failed.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failures() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Subject, res.Err))
	}
	return errors.Join(errs...)
}
