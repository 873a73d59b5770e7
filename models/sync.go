package models

import "time"

// Outcome is the result of a session mutation: applied on the remote store,
// queued for a later sync cycle, discarded entirely, or a no-op that had
// nothing to change. A mutation is never dropped silently, and Applied
// always means the remote store confirmed the write.
type Outcome int

const (
	// OutcomeApplied means the mutation reached the remote store directly.
	OutcomeApplied Outcome = iota
	// OutcomeQueued means the mutation is durably queued for the next drain.
	OutcomeQueued
	// OutcomeDiscarded means the mutation could not be applied or queued.
	OutcomeDiscarded
	// OutcomeNoop means the mutation had nothing to change, so nothing was
	// written locally or remotely.
	OutcomeNoop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeQueued:
		return "queued"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeNoop:
		return "nothing to do"
	default:
		return "unknown"
	}
}

// SyncError records a single failed queue entry during a drain cycle.
type SyncError struct {
	Action    ActionType `json:"action"`
	Error     string     `json:"error"`
	Timestamp time.Time  `json:"timestamp"`
}

// SyncReport summarises one drain cycle.
type SyncReport struct {
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Errors     []SyncError `json:"errors,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Clean reports whether the cycle completed without failures.
func (r SyncReport) Clean() bool { return r.Failed == 0 }
