package domain

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates distribution job lifecycle states. A job transitions
// from running to exactly one of completed or failed and never back.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// RecipientResult records the delivery outcome for a single recipient.
// Exactly one is appended per recipient, in send order.
type RecipientResult struct {
	RecipientID string          `json:"recipient_id"`
	Name        string          `json:"name,omitempty"`
	Phone       string          `json:"phone"`
	Success     bool            `json:"success"`
	APIResponse json.RawMessage `json:"api_response,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// DistributionJob tracks one background fan-out run. The orchestrator
// goroutine that owns the job is its only writer; status polls observe
// snapshots taken by the registry. Processed equals Successful+Failed and
// len(Results) at every observation point.
type DistributionJob struct {
	ID              string            `json:"job_id"`
	Status          JobStatus         `json:"status"`
	Holiday         string            `json:"holiday"`
	TotalRecipients int               `json:"total_recipients"`
	Processed       int               `json:"processed"`
	Successful      int               `json:"successful"`
	Failed          int               `json:"failed"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	Error           string            `json:"error,omitempty"`
	Results         []RecipientResult `json:"results"`
}

// Clone returns a deep copy that is safe to hand to concurrent readers while
// the owning goroutine keeps mutating the original.
func (j *DistributionJob) Clone() *DistributionJob {
	cp := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	cp.Results = make([]RecipientResult, len(j.Results))
	copy(cp.Results, j.Results)
	return &cp
}
