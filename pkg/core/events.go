package core

import "time"

// Event is the interface for all orchestration events.
type Event interface {
	eventMarker()
}

// JobSubmitted is emitted when the job service accepts a submission.
type JobSubmitted struct {
	Record    *JobRecord
	Timestamp time.Time
}

func (*JobSubmitted) eventMarker() {}

// JobStatusChanged is emitted when a poll observes a new status.
type JobStatusChanged struct {
	Record    *JobRecord
	Previous  JobStatus
	Timestamp time.Time
}

func (*JobStatusChanged) eventMarker() {}

// JobRetrying is emitted when a retryable failure schedules another attempt.
type JobRetrying struct {
	Record    *JobRecord
	Attempt   int
	Error     error
	Timestamp time.Time
}

func (*JobRetrying) eventMarker() {}

// JobSucceeded is emitted when a job reaches SUCCEEDED.
type JobSucceeded struct {
	Record    *JobRecord
	Timestamp time.Time
}

func (*JobSucceeded) eventMarker() {}

// JobFailed is emitted when a job reaches FAILED.
type JobFailed struct {
	Record    *JobRecord
	Error     error
	Timestamp time.Time
}

func (*JobFailed) eventMarker() {}
