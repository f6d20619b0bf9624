package dto

import "time"

// Job names for the daily reconciliation pipeline, in execution order.
const (
	JobAutoCheckout     = "auto_checkout"
	JobLeavePropagation = "leave_propagation"
	JobMarkHoliday      = "mark_holiday"
	JobMarkAbsent       = "mark_absent"
)

// JobResult counts per-item outcomes of one pipeline job. Item failures are
// counted, never propagated; a failed item does not abort the job.
type JobResult struct {
	Name      string `json:"name"`
	Succeeded int    `json:"succeeded"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// ReconciliationSummary is the aggregate outcome of one daily run.
type ReconciliationSummary struct {
	Date       string      `json:"date"`
	Holiday    *string     `json:"holiday,omitempty"`
	Sunday     bool        `json:"sunday"`
	Jobs       []JobResult `json:"jobs"`
	StartedAt  time.Time   `json:"started_at"`
	DurationMS int64       `json:"duration_ms"`
}
