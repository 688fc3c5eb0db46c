package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job status values. A job is active while pending or processing; idle and
// failed are terminal (failed until an external retry re-enqueues).
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusIdle       = "idle"
	JobStatusFailed     = "failed"
)

// IngestionJob is one durable queue entry. Jobs are never deleted; terminal
// rows are retained for audit and debugging.
//
// The partial unique index on (creator_profile_id, dedup_key) over active
// rows is the queue's idempotency guarantee: at most one non-terminal job
// per logical ingestion request.
type IngestionJob struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatorProfileID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_jobs_active_dedup,where:status = 'pending' OR status = 'processing'"`
	JobType          string    `gorm:"not null"`
	Payload          []byte
	Status           string `gorm:"not null;default:pending;index"`
	DedupKey         string `gorm:"not null;uniqueIndex:idx_jobs_active_dedup,where:status = 'pending' OR status = 'processing'"`
	Depth            int    `gorm:"not null;default:0"`
	Priority         int    `gorm:"not null;default:0"`
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM.
func (IngestionJob) TableName() string {
	return "ingestion_jobs"
}

// BeforeCreate assigns an ID when the caller did not.
func (j *IngestionJob) BeforeCreate(_ *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Active reports whether the job still occupies its dedup slot.
func (j *IngestionJob) Active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}
