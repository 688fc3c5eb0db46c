package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")

	// ErrDuplicateJob means an active job already holds the dedup slot.
	// Enqueue callers treat it as already-satisfied, not as a failure.
	ErrDuplicateJob = errors.New("active job already exists for dedup key")

	// ErrNoJob means the queue has no claimable pending job.
	ErrNoJob = errors.New("no pending job")
)
