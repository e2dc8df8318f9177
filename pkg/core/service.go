package core

import "context"

// JobDescription is the status snapshot returned by the job service for one
// remote job.
type JobDescription struct {
	Status JobStatus
	Reason string
}

// JobService is the remote job-execution collaborator. Implementations wrap
// a managed compute/queue service client; errors should carry an ErrorKind
// via ServiceError so the retry policy can classify them.
type JobService interface {
	// Submit schedules the job described by spec and returns the identifier
	// assigned by the service.
	Submit(ctx context.Context, spec JobSpec) (string, error)

	// Describe returns the current status of a previously submitted job.
	Describe(ctx context.Context, remoteID string) (JobDescription, error)

	// Cancel requests termination of a job. The terminal status is still
	// observed through Describe.
	Cancel(ctx context.Context, remoteID, reason string) error
}

// ObjectStore is the object-storage collaborator used for bulk input/output
// transfers.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, body []byte) error
}
