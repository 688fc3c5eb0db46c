// Command ingest runs a single ingestion against an in-memory store and
// prints the merged links as JSON. Useful for trying a strategy against a
// live page without standing up the service.
//
// Usage:
//
//	ingest https://linktr.ee/someartist
//	ingest https://www.youtube.com/@someartist
//	ingest https://instagram.com/someartist  # requires INSTAGRAM_* env vars
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	ingest "github.com/jovie-dev/ingest"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/platform"
	"github.com/jovie-dev/ingest/store"
	"github.com/jovie-dev/ingest/store/model"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	noCache := flag.Bool("no-cache", false, "disable HTTP caching (enabled by default)")
	cacheTTL := flag.Duration("cache-ttl", time.Hour, "cache time-to-live")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ingest [options] <url>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nSupported source pages:")
		fmt.Fprintln(os.Stderr, "  - Linktree (no auth)")
		fmt.Fprintln(os.Stderr, "  - Beacons (no auth)")
		fmt.Fprintln(os.Stderr, "  - Laylo (no auth)")
		fmt.Fprintln(os.Stderr, "  - YouTube channels (no auth)")
		fmt.Fprintln(os.Stderr, "  - Spotify artist pages (no auth)")
		fmt.Fprintln(os.Stderr, "  - Instagram (requires INSTAGRAM_* env vars or browser cookies)")
		os.Exit(1)
	}

	input := flag.Arg(0)

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(context.Background(), input, *noCache, *cacheTTL, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, input string, noCache bool, cacheTTL time.Duration, logger *slog.Logger) error {
	jobType, err := jobTypeFor(input)
	if err != nil {
		return err
	}

	var cache fetch.Cacher
	if noCache {
		cache = fetch.NewNullCache()
	} else {
		c, err := fetch.NewCache(cacheTTL)
		if err != nil {
			logger.Warn("cache unavailable, fetching without one", "error", err)
			cache = fetch.NewNullCache()
		} else {
			cache = c
		}
	}

	db, err := store.InitDB(store.DBConfig{Type: "sqlite", Name: "file:ingest-cli?mode=memory&cache=shared"}, logger)
	if err != nil {
		return err
	}
	s := store.NewStore(db, logger)
	defer s.Close()
	if err := s.InitialMigration(); err != nil {
		return err
	}

	profile := &model.CreatorProfile{Username: "cli"}
	if err := s.Profile().Create(ctx, profile); err != nil {
		return err
	}

	o := ingest.New(s,
		ingest.WithLogger(logger),
		ingest.WithStrategies(ingest.BuildStrategies(ctx, cache, logger)),
	)

	if _, err := o.EnqueueIngestion(ctx, profile.ID, job.NewPagePayload(jobType, input), 0); err != nil {
		return err
	}
	if _, err := o.Drain(ctx); err != nil {
		return err
	}

	got, err := s.Profile().Get(ctx, profile.ID)
	if err != nil {
		return err
	}
	if got.IngestionStatus == model.IngestionFailed {
		return fmt.Errorf("ingestion failed: %s", got.IngestionError)
	}

	links, err := s.Link().ListForProfile(ctx, profile.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Profile *model.CreatorProfile `json:"profile"`
		Links   []model.SocialLink    `json:"links"`
	}{Profile: got, Links: links})
}

// jobTypeFor picks the import job type whose strategy crawls the given URL.
func jobTypeFor(rawURL string) (job.Type, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil {
		return "", fmt.Errorf("unsupported URL %q: %w", rawURL, err)
	}

	switch link.Platform {
	case platform.Linktree:
		return job.TypeLinktree, nil
	case platform.Beacons:
		return job.TypeBeacons, nil
	case platform.Laylo:
		return job.TypeLaylo, nil
	case platform.YouTube:
		return job.TypeYouTube, nil
	case platform.Instagram:
		return job.TypeInstagram, nil
	case platform.Spotify:
		return job.TypeSpotify, nil
	default:
		return "", fmt.Errorf("no import strategy crawls %s URLs", link.Platform)
	}
}
