// Package merge folds extraction results into a profile's social links.
// The merge is the only writer of scraped links, runs inside one store
// transaction, and enqueues follow-up crawls for newly discovered pages.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/platform"
	"github.com/jovie-dev/ingest/store"
	"github.com/jovie-dev/ingest/store/model"
)

// Result summarizes what a merge did.
type Result struct {
	Added     int
	Updated   int
	Skipped   int
	FollowUps int
}

// Merger applies extraction results to the store.
type Merger struct {
	store store.Store
	log   *slog.Logger
}

// New creates a Merger.
func New(s store.Store, log *slog.Logger) *Merger {
	if log == nil {
		log = slog.Default()
	}
	return &Merger{store: s, log: log}
}

// candidate is a normalized link with the best confidence seen for its
// identity within one extraction result.
type candidate struct {
	link       platform.Link
	confidence float64
}

// Merge writes res into profileID's links at the given crawl depth. The
// whole merge commits or none of it does.
func (m *Merger) Merge(ctx context.Context, profileID uuid.UUID, depth int, res *extract.Result) (Result, error) {
	txCtx, err := m.store.NewTransactionContext(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("opening transaction: %w", err)
	}

	out, err := m.merge(txCtx, profileID, depth, res)
	if err != nil {
		if _, rbErr := store.Rollback(txCtx); rbErr != nil {
			m.log.Error("rollback failed", "error", rbErr)
		}
		return Result{}, err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return Result{}, fmt.Errorf("committing merge: %w", err)
	}
	return out, nil
}

func (m *Merger) merge(ctx context.Context, profileID uuid.UUID, depth int, res *extract.Result) (Result, error) {
	var out Result

	candidates := m.collapse(res)

	for _, c := range candidates {
		added, updated, err := m.apply(ctx, profileID, c, res.Platform)
		if err != nil {
			return Result{}, err
		}
		switch {
		case added:
			out.Added++
		case updated:
			out.Updated++
		default:
			out.Skipped++
		}

		if !added || depth >= job.MaxDepth {
			continue
		}
		enqueued, err := m.followUp(ctx, profileID, depth, c.link)
		if err != nil {
			return Result{}, err
		}
		if enqueued {
			out.FollowUps++
		}
	}

	if res.DisplayName != "" || res.AvatarURL != "" {
		err := m.store.Profile().UpdateIdentity(ctx, profileID, res.DisplayName, res.AvatarURL)
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return Result{}, fmt.Errorf("updating profile identity: %w", err)
		}
	}

	m.log.Info("merge complete",
		"profile", profileID, "source", res.Platform,
		"added", out.Added, "updated", out.Updated, "skipped", out.Skipped, "followups", out.FollowUps)
	return out, nil
}

// collapse normalizes the raw links and dedupes them on canonical identity,
// keeping the highest confidence per identity. Unrecognized URLs drop out.
func (m *Merger) collapse(res *extract.Result) []candidate {
	byIdentity := map[string]int{}
	var out []candidate

	for _, raw := range res.Links {
		link, err := platform.Normalize(raw.RawURL)
		if err != nil {
			m.log.Debug("skipping unrecognized link", "url", raw.RawURL, "error", err)
			continue
		}

		key := string(link.Platform) + "\x00" + link.CanonicalID
		if i, seen := byIdentity[key]; seen {
			if raw.Confidence > out[i].confidence {
				out[i].confidence = raw.Confidence
			}
			continue
		}
		byIdentity[key] = len(out)
		out = append(out, candidate{link: link, confidence: raw.Confidence})
	}
	return out
}

// apply upserts one candidate, honoring source precedence. Returns whether
// the row was added or updated.
func (m *Merger) apply(ctx context.Context, profileID uuid.UUID, c candidate, discoveredOn string) (added, updated bool, err error) {
	existing, err := m.store.Link().Get(ctx, profileID, string(c.link.Platform), c.link.CanonicalID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			return false, false, fmt.Errorf("looking up link: %w", err)
		}

		row := &model.SocialLink{
			CreatorProfileID: profileID,
			PlatformID:       string(c.link.Platform),
			CanonicalID:      c.link.CanonicalID,
			URL:              c.link.URL,
			Source:           model.LinkSourceScraped,
			Confidence:       c.confidence,
			DiscoveredOn:     discoveredOn,
		}
		if err := m.store.Link().Create(ctx, row); err != nil {
			return false, false, fmt.Errorf("creating link: %w", err)
		}
		return true, false, nil
	}

	// Manual and verified rows are off-limits to the scraper.
	if model.SourceRank(existing.Source) > model.SourceRank(model.LinkSourceScraped) {
		return false, false, nil
	}

	// Equal confidence rewrites: the most recent observation wins.
	if c.confidence < existing.Confidence {
		return false, false, nil
	}

	existing.URL = c.link.URL
	existing.Confidence = c.confidence
	existing.DiscoveredOn = discoveredOn
	if err := m.store.Link().Update(ctx, existing); err != nil {
		return false, false, fmt.Errorf("updating link: %w", err)
	}
	return false, true, nil
}

// followUp enqueues a crawl of a newly discovered page when its platform
// warrants one. Duplicate active jobs are tolerated, not errors.
func (m *Merger) followUp(ctx context.Context, profileID uuid.UUID, depth int, link platform.Link) (bool, error) {
	t, ok := job.FollowUpFor(link.Platform)
	if !ok {
		return false, nil
	}

	payload, err := job.EncodePayload(job.NewPagePayload(t, link.URL))
	if err != nil {
		return false, fmt.Errorf("encoding follow-up payload: %w", err)
	}

	_, err = m.store.Job().Enqueue(ctx, store.NewJob{
		CreatorProfileID: profileID,
		JobType:          t,
		Payload:          payload,
		DedupKey:         job.DedupKey(t, link.CanonicalID),
		Depth:            depth + 1,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateJob) {
			return false, nil
		}
		return false, fmt.Errorf("enqueueing follow-up: %w", err)
	}

	m.log.Debug("follow-up enqueued", "profile", profileID, "type", t, "url", link.URL, "depth", depth+1)
	return true, nil
}
