package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncRunStatus is the lifecycle of one batch processing run.
type SyncRunStatus string

const (
	SyncRunStatusPending    SyncRunStatus = "pending"
	SyncRunStatusProcessing SyncRunStatus = "processing"
	SyncRunStatusCompleted  SyncRunStatus = "completed"
	SyncRunStatusFailed     SyncRunStatus = "failed"
)

// SyncRun records one invocation of the batch runner: what was asked for,
// how far it got, and the aggregate counts. Persisted so triggering an async
// run can hand back an id and so history survives restarts.
type SyncRun struct {
	ID                uuid.UUID     `json:"id"`
	Type              string        `json:"type"`
	Status            SyncRunStatus `json:"status"`
	Total             int           `json:"total"`
	Processed         int           `json:"processed"`
	Successful        int           `json:"successful"`
	Failed            int           `json:"failed"`
	CandidatesCreated int           `json:"candidates_created"`
	Error             string        `json:"error,omitempty"`
	StartedAt         *time.Time    `json:"started_at,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// SyncRunFilter narrows sync-run history queries.
type SyncRunFilter struct {
	Status *SyncRunStatus
	Limit  int
	Offset int
}
