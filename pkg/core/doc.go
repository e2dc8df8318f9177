// Package core contains the shared domain model for batchkit: job specs and
// records, the job status state machine, the error-kind taxonomy, the
// external collaborator interfaces (job service, object store) and the
// durable state store contract.
//
// Other packages depend on core; core depends on nothing inside the module.
package core
