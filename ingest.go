// Package ingest orchestrates the link ingestion pipeline: it consumes
// queued jobs, dispatches them to platform strategies, merges extracted
// links into creator profiles, and drives the per-profile status machine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/merge"
	"github.com/jovie-dev/ingest/store"
	"github.com/jovie-dev/ingest/store/model"
)

// Defaults for the worker and sweeper loops.
const (
	DefaultPollInterval  = 2 * time.Second
	DefaultSweepInterval = time.Minute
	DefaultStaleAfter    = 10 * time.Minute
	DefaultJobTimeout    = 60 * time.Second
)

// Orchestrator runs the ingestion pipeline over a store.
type Orchestrator struct {
	store      store.Store
	merger     *merge.Merger
	strategies map[job.Type]Strategy
	log        *slog.Logger

	pollInterval  time.Duration
	sweepInterval time.Duration
	staleAfter    time.Duration
	jobTimeout    time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = logger }
}

// WithStrategies sets the strategy table. Without it the orchestrator can
// only fail jobs.
func WithStrategies(strategies map[job.Type]Strategy) Option {
	return func(o *Orchestrator) { o.strategies = strategies }
}

// WithPollInterval sets how long idle workers wait between queue polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithSweep sets the sweeper cadence and the age past which a processing
// job counts as stuck.
func WithSweep(interval, staleAfter time.Duration) Option {
	return func(o *Orchestrator) {
		o.sweepInterval = interval
		o.staleAfter = staleAfter
	}
}

// WithJobTimeout bounds the fetch-extract-merge pipeline per job.
func WithJobTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.jobTimeout = d }
}

// New creates an Orchestrator over the given store.
func New(s store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:         s,
		log:           slog.Default(),
		pollInterval:  DefaultPollInterval,
		sweepInterval: DefaultSweepInterval,
		staleAfter:    DefaultStaleAfter,
		jobTimeout:    DefaultJobTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.merger = merge.New(s, o.log)
	return o
}

// EnqueueIngestion validates and enqueues an ingestion job for a profile,
// moving the profile to pending. Returns store.ErrDuplicateJob when an
// equivalent job is already active.
func (o *Orchestrator) EnqueueIngestion(ctx context.Context, profileID uuid.UUID, p job.Payload, priority int) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}

	dedupKey, err := dedupKeyFor(p)
	if err != nil {
		return uuid.Nil, err
	}

	raw, err := job.EncodePayload(p)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := o.store.Job().Enqueue(ctx, store.NewJob{
		CreatorProfileID: profileID,
		JobType:          p.JobType(),
		Payload:          raw,
		DedupKey:         dedupKey,
		Depth:            0,
		Priority:         priority,
	})
	if err != nil {
		return uuid.Nil, err
	}

	// A profile already pending or processing keeps its status.
	if err := o.transition(ctx, profileID, model.IngestionPending, ""); err != nil && !errors.Is(err, ErrBadTransition) {
		return uuid.Nil, err
	}

	return id, nil
}

func dedupKeyFor(p job.Payload) (string, error) {
	switch v := p.(type) {
	case job.PagePayload:
		link, err := v.Canonical()
		if err != nil {
			return "", err
		}
		return job.DedupKey(p.JobType(), link.CanonicalID), nil
	case job.LyricsPayload:
		return job.DedupKey(p.JobType(), v.TrackID), nil
	default:
		return "", fmt.Errorf("%w: %T", job.ErrInvalidPayload, p)
	}
}

// ProcessNext claims and runs one job. Returns false when the queue has no
// claimable work.
func (o *Orchestrator) ProcessNext(ctx context.Context) (bool, error) {
	claimed, err := o.store.Job().DequeueNext(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoJob) {
			return false, nil
		}
		return false, fmt.Errorf("dequeuing: %w", err)
	}

	o.process(ctx, claimed)
	return true, nil
}

// process runs one claimed job to a terminal state. Errors land in the job
// row and the profile status, never in the worker loop.
func (o *Orchestrator) process(ctx context.Context, claimed *model.IngestionJob) {
	profileID := claimed.CreatorProfileID
	log := o.log.With("job", claimed.ID, "type", claimed.JobType, "profile", profileID)

	// Re-triggered profiles may still be failed; pull them forward. Races
	// with another writer are harmless, the terminal write below settles it.
	if err := o.transition(ctx, profileID, model.IngestionPending, ""); err != nil && !errors.Is(err, ErrBadTransition) {
		log.Error("status transition failed", "error", err)
	}
	if err := o.transition(ctx, profileID, model.IngestionProcessing, ""); err != nil && !errors.Is(err, ErrBadTransition) {
		log.Error("status transition failed", "error", err)
	}

	result, err := o.run(ctx, claimed)
	if err != nil {
		// A canceled worker context means shutdown, not a bad job. Put the
		// claim back for the next run instead of burying the job in failed.
		if ctx.Err() != nil {
			releaseCtx := context.WithoutCancel(ctx)
			if relErr := o.store.Job().Release(releaseCtx, claimed.ID); relErr != nil {
				log.Error("release failed", "error", relErr)
			}
			if trErr := o.transition(releaseCtx, profileID, model.IngestionPending, ""); trErr != nil && !errors.Is(trErr, ErrBadTransition) {
				log.Error("status transition failed", "error", trErr)
			}
			log.Info("job released for restart")
			return
		}

		log.Warn("job failed", "error", err)
		if ackErr := o.store.Job().Ack(ctx, claimed.ID, store.OutcomeFailure, err.Error()); ackErr != nil {
			log.Error("ack failed", "error", ackErr)
		}
		if trErr := o.transition(ctx, profileID, model.IngestionFailed, err.Error()); trErr != nil && !errors.Is(trErr, ErrBadTransition) {
			log.Error("status transition failed", "error", trErr)
		}
		return
	}

	log.Info("job complete",
		"added", result.Added, "updated", result.Updated,
		"skipped", result.Skipped, "followups", result.FollowUps)
	if ackErr := o.store.Job().Ack(ctx, claimed.ID, store.OutcomeSuccess, ""); ackErr != nil {
		log.Error("ack failed", "error", ackErr)
	}
	if trErr := o.transition(ctx, profileID, model.IngestionIdle, ""); trErr != nil && !errors.Is(trErr, ErrBadTransition) {
		log.Error("status transition failed", "error", trErr)
	}

	// Follow-up jobs keep the profile visibly in progress.
	if o.hasPendingJobs(ctx, profileID) {
		if trErr := o.transition(ctx, profileID, model.IngestionPending, ""); trErr != nil && !errors.Is(trErr, ErrBadTransition) {
			log.Error("status transition failed", "error", trErr)
		}
	}
}

// run executes the fetch-extract-merge pipeline for a claimed job.
func (o *Orchestrator) run(ctx context.Context, claimed *model.IngestionJob) (merge.Result, error) {
	payload, err := job.ParsePayload(job.Type(claimed.JobType), claimed.Payload)
	if err != nil {
		return merge.Result{}, fmt.Errorf("parsing payload: %w", err)
	}

	source, ok := payload.(job.SourcePayload)
	if !ok {
		return merge.Result{}, fmt.Errorf("no strategy registered for job type %q", claimed.JobType)
	}

	strategy, ok := o.strategies[job.Type(claimed.JobType)]
	if !ok {
		return merge.Result{}, fmt.Errorf("no strategy registered for job type %q", claimed.JobType)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.jobTimeout)
	defer cancel()

	res, err := strategy.Fetch(fetchCtx, source.URL())
	if err != nil {
		return merge.Result{}, err
	}

	result, err := o.merger.Merge(ctx, claimed.CreatorProfileID, claimed.Depth, res)
	if err != nil {
		return merge.Result{}, fmt.Errorf("merging: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) hasPendingJobs(ctx context.Context, profileID uuid.UUID) bool {
	jobs, err := o.store.Job().ListForProfile(ctx, profileID)
	if err != nil {
		o.log.Error("listing jobs failed", "profile", profileID, "error", err)
		return false
	}
	for i := range jobs {
		if jobs[i].Status == model.JobStatusPending {
			return true
		}
	}
	return false
}

// Drain processes jobs until the queue is empty. Used by the one-shot CLI
// and tests.
func (o *Orchestrator) Drain(ctx context.Context) (int, error) {
	processed := 0
	for {
		ok, err := o.ProcessNext(ctx)
		if err != nil {
			return processed, err
		}
		if !ok {
			return processed, nil
		}
		processed++
	}
}

// Sweep fails processing jobs stuck past the staleness threshold and moves
// their profiles to failed.
func (o *Orchestrator) Sweep(ctx context.Context) (int, error) {
	stale, err := o.store.Job().SweepStale(ctx, o.staleAfter)
	if err != nil {
		return 0, err
	}

	for i := range stale {
		profileID := stale[i].CreatorProfileID
		if trErr := o.transition(ctx, profileID, model.IngestionFailed, "processing timeout"); trErr != nil && !errors.Is(trErr, ErrBadTransition) {
			o.log.Error("status transition failed", "profile", profileID, "error", trErr)
		}
	}
	return len(stale), nil
}

// Run starts the given number of workers plus the sweeper and blocks until
// ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	o.log.Info("ingestion pipeline starting", "workers", workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.workerLoop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.sweeperLoop(ctx)
	}()

	wg.Wait()
	o.log.Info("ingestion pipeline stopped")
}

func (o *Orchestrator) workerLoop(ctx context.Context) {
	for {
		worked, err := o.ProcessNext(ctx)
		if err != nil {
			o.log.Error("worker error", "error", err)
		}
		if worked {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.pollInterval):
		}
	}
}

func (o *Orchestrator) sweeperLoop(ctx context.Context) {
	ticker := time.NewTicker(o.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := o.Sweep(ctx); err != nil {
				o.log.Error("sweep failed", "error", err)
			} else if n > 0 {
				o.log.Warn("swept stale jobs", "count", n)
			}
		}
	}
}
