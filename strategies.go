package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jovie-dev/ingest/beacons"
	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/instagram"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/laylo"
	"github.com/jovie-dev/ingest/linktree"
	"github.com/jovie-dev/ingest/spotify"
	"github.com/jovie-dev/ingest/youtube"
)

// Strategy fetches one source document and extracts candidate links.
// Each platform package provides one via its Client.
type Strategy interface {
	Fetch(ctx context.Context, url string) (*extract.Result, error)
}

// BuildStrategies constructs the strategy table for all supported job types.
// Strategies whose construction fails (Instagram without cookies) are left
// out; jobs of that type fail at dispatch with a clear error instead of
// blocking the rest of the pipeline. import_lyrics has no strategy here.
func BuildStrategies(ctx context.Context, cache fetch.Cacher, logger *slog.Logger) map[job.Type]Strategy {
	if logger == nil {
		logger = slog.Default()
	}

	strategies := make(map[job.Type]Strategy, 6)

	if c, err := linktree.New(ctx, linktree.WithCache(cache), linktree.WithLogger(logger)); err == nil {
		strategies[job.TypeLinktree] = c
	}
	if c, err := beacons.New(ctx, beacons.WithCache(cache), beacons.WithLogger(logger)); err == nil {
		strategies[job.TypeBeacons] = c
	}
	if c, err := laylo.New(ctx, laylo.WithCache(cache), laylo.WithLogger(logger)); err == nil {
		strategies[job.TypeLaylo] = c
	}
	if c, err := youtube.New(ctx, youtube.WithCache(cache), youtube.WithLogger(logger)); err == nil {
		strategies[job.TypeYouTube] = c
	}
	if c, err := spotify.New(ctx, spotify.WithCache(cache), spotify.WithLogger(logger)); err == nil {
		strategies[job.TypeSpotify] = c
	}

	if c, err := instagram.New(ctx, instagram.WithCache(cache), instagram.WithLogger(logger)); err == nil {
		strategies[job.TypeInstagram] = c
	} else if errors.Is(err, extract.ErrAuthRequired) {
		logger.Warn("instagram strategy disabled", "error", err)
	} else {
		logger.Error("instagram strategy failed to initialize", "error", err)
	}

	return strategies
}
