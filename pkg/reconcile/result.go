package reconcile

import "strings"

// Result accumulates the statistics of one push or pull phase.
type Result struct {
	// Pushed counts buffer rows inserted or overwritten by the push phase.
	Pushed int

	// New counts local records created by the pull phase.
	New int

	// Merged counts local records updated by the pull phase.
	Merged int

	// Failed counts per-row and per-record failures. Failures never abort
	// a phase; they are recorded here and surfaced through the run log.
	Failed int

	// Errors holds the failure details, in occurrence order.
	Errors []error
}

// Fail records one failure.
func (r *Result) Fail(err error) {
	r.Failed++
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// HasFailures reports whether any failure was recorded.
func (r *Result) HasFailures() bool {
	return r.Failed > 0
}

// ErrorText joins the failure messages with "; " for the run log.
func (r *Result) ErrorText() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
