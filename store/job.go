package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/store/model"
	"gorm.io/gorm"
)

// Outcome is the result a worker reports when acking a job.
type Outcome string

// Ack outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// NewJob describes a job to enqueue.
type NewJob struct {
	CreatorProfileID uuid.UUID
	JobType          job.Type
	Payload          []byte
	DedupKey         string
	Depth            int
	Priority         int
}

// Job is the durable queue interface.
type Job interface {
	// Enqueue inserts a pending job. Returns ErrDuplicateJob when an
	// active job already holds (creatorProfileID, dedupKey), and
	// job.ErrDepthExceeded when depth is past the recursion bound.
	Enqueue(ctx context.Context, n NewJob) (uuid.UUID, error)

	// DequeueNext atomically claims the next pending job, ordered by
	// priority then age, skipping profiles that already have a job in
	// processing. Returns ErrNoJob when the queue is drained.
	DequeueNext(ctx context.Context) (*model.IngestionJob, error)

	// Ack finishes a claimed job: success moves it to idle, failure to
	// failed with the given error message.
	Ack(ctx context.Context, id uuid.UUID, outcome Outcome, errMsg string) error

	// Release returns a claimed job to pending so another worker can pick
	// it up later. Used when shutdown interrupts a job mid-flight; the
	// interruption is not a failure of the job itself.
	Release(ctx context.Context, id uuid.UUID) error

	// SweepStale force-fails processing jobs idle past the threshold and
	// returns them so callers can reset the owning profiles.
	SweepStale(ctx context.Context, olderThan time.Duration) ([]model.IngestionJob, error)

	Get(ctx context.Context, id uuid.UUID) (*model.IngestionJob, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.IngestionJob, error)
}

// JobStore implements the Job interface.
type JobStore struct {
	db  *gorm.DB
	log *slog.Logger
}

// Make sure we conform to the Job interface.
var _ Job = (*JobStore)(nil)

// NewJobStore creates a new job store.
func NewJobStore(db *gorm.DB, log *slog.Logger) Job {
	return &JobStore{db: db, log: log}
}

func (s *JobStore) Enqueue(ctx context.Context, n NewJob) (uuid.UUID, error) {
	if n.Depth > job.MaxDepth {
		return uuid.Nil, fmt.Errorf("%w: depth %d > %d", job.ErrDepthExceeded, n.Depth, job.MaxDepth)
	}
	if !n.JobType.Valid() {
		return uuid.Nil, fmt.Errorf("%w: %q", job.ErrUnknownType, n.JobType)
	}

	db := s.getDB(ctx)

	// Cheap pre-check; the partial unique index is the real guarantee
	// against a concurrent enqueue racing past this read.
	var active int64
	err := db.Model(&model.IngestionJob{}).
		Where("creator_profile_id = ? AND dedup_key = ? AND status IN ?",
			n.CreatorProfileID, n.DedupKey, []string{model.JobStatusPending, model.JobStatusProcessing}).
		Count(&active).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("checking active jobs: %w", err)
	}
	if active > 0 {
		return uuid.Nil, ErrDuplicateJob
	}

	row := model.IngestionJob{
		CreatorProfileID: n.CreatorProfileID,
		JobType:          string(n.JobType),
		Payload:          n.Payload,
		Status:           model.JobStatusPending,
		DedupKey:         n.DedupKey,
		Depth:            n.Depth,
		Priority:         n.Priority,
	}
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, ErrDuplicateJob
		}
		return uuid.Nil, fmt.Errorf("creating job: %w", err)
	}

	s.log.Debug("job enqueued", "job", row.ID, "type", row.JobType, "profile", row.CreatorProfileID, "depth", row.Depth)
	return row.ID, nil
}

func (s *JobStore) DequeueNext(ctx context.Context) (*model.IngestionJob, error) {
	db := s.getDB(ctx)

	// A candidate can be claimed by another worker between selection and
	// the conditional update; when that happens we just pick again.
	const maxClaimAttempts = 5

	for range maxClaimAttempts {
		var candidate model.IngestionJob
		err := db.
			Where("status = ?", model.JobStatusPending).
			Where("creator_profile_id NOT IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Model(&model.IngestionJob{}).
					Select("creator_profile_id").
					Where("status = ?", model.JobStatusProcessing)).
			Order("priority DESC, created_at ASC").
			First(&candidate).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoJob
			}
			return nil, fmt.Errorf("selecting candidate job: %w", err)
		}

		// Atomic claim: only one worker wins the pending -> processing
		// transition for a given row. The per-profile exclusion repeats
		// inside the claim; two workers selecting different pending jobs
		// of the same profile must not both succeed.
		result := db.Model(&model.IngestionJob{}).
			Where("id = ? AND status = ?", candidate.ID, model.JobStatusPending).
			Where("creator_profile_id NOT IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Model(&model.IngestionJob{}).
					Select("creator_profile_id").
					Where("status = ?", model.JobStatusProcessing)).
			Updates(map[string]any{
				"status":     model.JobStatusProcessing,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return nil, fmt.Errorf("claiming job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			continue // lost the race
		}

		candidate.Status = model.JobStatusProcessing
		s.log.Debug("job claimed", "job", candidate.ID, "type", candidate.JobType)
		return &candidate, nil
	}

	return nil, ErrNoJob
}

func (s *JobStore) Ack(ctx context.Context, id uuid.UUID, outcome Outcome, errMsg string) error {
	status := model.JobStatusIdle
	if outcome == OutcomeFailure {
		status = model.JobStatusFailed
	}

	result := s.getDB(ctx).Model(&model.IngestionJob{}).
		Where("id = ? AND status = ?", id, model.JobStatusProcessing).
		Updates(map[string]any{
			"status":        status,
			"error_message": errMsg,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("acking job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) Release(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Model(&model.IngestionJob{}).
		Where("id = ? AND status = ?", id, model.JobStatusProcessing).
		Updates(map[string]any{
			"status":     model.JobStatusPending,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("releasing job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	s.log.Debug("job released", "job", id)
	return nil
}

func (s *JobStore) SweepStale(ctx context.Context, olderThan time.Duration) ([]model.IngestionJob, error) {
	db := s.getDB(ctx)
	cutoff := time.Now().Add(-olderThan)

	var stale []model.IngestionJob
	err := db.
		Where("status = ? AND updated_at < ?", model.JobStatusProcessing, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("finding stale jobs: %w", err)
	}

	for i := range stale {
		result := db.Model(&model.IngestionJob{}).
			Where("id = ? AND status = ?", stale[i].ID, model.JobStatusProcessing).
			Updates(map[string]any{
				"status":        model.JobStatusFailed,
				"error_message": "processing timeout",
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return nil, fmt.Errorf("failing stale job %s: %w", stale[i].ID, result.Error)
		}
		stale[i].Status = model.JobStatusFailed
		stale[i].ErrorMessage = "processing timeout"
		s.log.Warn("stale job forced to failed", "job", stale[i].ID, "type", stale[i].JobType)
	}

	return stale, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.IngestionJob, error) {
	var row model.IngestionJob
	if err := s.getDB(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", err)
	}
	return &row, nil
}

func (s *JobStore) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.IngestionJob, error) {
	var rows []model.IngestionJob
	err := s.getDB(ctx).
		Where("creator_profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return rows, nil
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
