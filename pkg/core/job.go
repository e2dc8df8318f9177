package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// JobStatus represents the last observed state of a remote batch job.
type JobStatus string

const (
	StatusSubmitted JobStatus = "SUBMITTED"
	StatusRunnable  JobStatus = "RUNNABLE"
	StatusStarting  JobStatus = "STARTING"
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusFailed    JobStatus = "FAILED"
)

// statusRank orders statuses along the job state machine. Terminal states
// share the highest rank so neither can replace the other.
var statusRank = map[JobStatus]int{
	StatusSubmitted: 0,
	StatusRunnable:  1,
	StatusStarting:  2,
	StatusRunning:   3,
	StatusSucceeded: 4,
	StatusFailed:    4,
}

// Known reports whether s is one of the statuses the engine tracks.
func (s JobStatus) Known() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether s is a final status.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ObjectRef identifies one object in remote storage.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ResourceSpec describes the compute resources a job requests.
type ResourceSpec struct {
	VCPUs     int `json:"vcpus"`
	MemoryMiB int `json:"memory_mib"`
}

// JobSpec is the immutable description of one unit of work. It is produced
// by the caller and never mutated by the engine.
type JobSpec struct {
	Name          string       `json:"name"`
	JobQueue      string       `json:"job_queue"`
	JobDefinition string       `json:"job_definition"`
	Command       []string     `json:"command,omitempty"`
	Resources     ResourceSpec `json:"resources"`
	Inputs        []ObjectRef  `json:"inputs,omitempty"`
	Outputs       []ObjectRef  `json:"outputs,omitempty"`
}

// fingerprintFields is the subset of JobSpec that determines identity for
// deduplication: two specs that run the same work collide, regardless of the
// display name or input/output bookkeeping.
type fingerprintFields struct {
	JobDefinition string       `json:"job_definition"`
	Command       []string     `json:"command"`
	Resources     ResourceSpec `json:"resources"`
}

// Fingerprint returns a deterministic hex digest over the semantically
// significant fields of the spec.
func (s JobSpec) Fingerprint() string {
	data, _ := json.Marshal(fingerprintFields{
		JobDefinition: s.JobDefinition,
		Command:       s.Command,
		Resources:     s.Resources,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StatusChange is one observed status transition.
type StatusChange struct {
	Status JobStatus `json:"status"`
	At     time.Time `json:"at"`
}

// StatusHistory is the append-only sequence of observed transitions.
type StatusHistory []StatusChange

// JobRecord is the mutable orchestration record for one submitted job.
// It is created when the job service accepts a submission and mutated only
// by the orchestrator's submit and poll operations.
type JobRecord struct {
	ID            string        `gorm:"primaryKey;size:36"`
	Fingerprint   string        `gorm:"index;size:64;not null"`
	RemoteID      string        `gorm:"uniqueIndex;size:128;not null"`
	Spec          JobSpec       `gorm:"serializer:json"`
	Status        JobStatus     `gorm:"index;size:20;not null"`
	AttemptCount  int           `gorm:"default:0"`
	LastError     string        `gorm:"type:text"`
	LastCheckedAt *time.Time    `gorm:"index"`
	StatusHistory StatusHistory `gorm:"serializer:json"`
	CreatedAt     time.Time     `gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime"`
}

// NewJobRecord builds the record for a freshly accepted submission.
// The remote identifier is assigned here, exactly once.
func NewJobRecord(id string, spec JobSpec, remoteID string, at time.Time) *JobRecord {
	return &JobRecord{
		ID:          id,
		Fingerprint: spec.Fingerprint(),
		RemoteID:    remoteID,
		Spec:        spec,
		Status:      StatusSubmitted,
		StatusHistory: StatusHistory{
			{Status: StatusSubmitted, At: at},
		},
	}
}

// Terminal reports whether the record has reached a final status.
func (r *JobRecord) Terminal() bool {
	return r.Status.Terminal()
}

// ApplyStatus advances the record to the observed status, appending to the
// history. Transitions are monotonic along the state machine: re-observing
// the current or an earlier status is an idempotent no-op (polling simply
// re-observes), while any attempt to move a terminal record is an invariant
// violation. Returns true when the status actually changed.
func (r *JobRecord) ApplyStatus(status JobStatus, at time.Time) (bool, error) {
	if !status.Known() {
		return false, NewInvariantError("apply-status", ErrUnknownStatus)
	}
	if r.Terminal() {
		if status == r.Status {
			return false, nil
		}
		return false, NewInvariantError("apply-status", ErrTerminalTransition)
	}
	if statusRank[status] <= statusRank[r.Status] {
		return false, nil
	}
	r.Status = status
	r.StatusHistory = append(r.StatusHistory, StatusChange{Status: status, At: at})
	return true, nil
}

// Fail moves a non-terminal record to FAILED, recording the reason.
func (r *JobRecord) Fail(reason string, at time.Time) error {
	if _, err := r.ApplyStatus(StatusFailed, at); err != nil {
		return err
	}
	r.LastError = reason
	return nil
}
