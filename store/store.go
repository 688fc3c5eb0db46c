// Package store persists ingestion state: the durable job queue, creator
// profiles, and their social links, backed by gorm over postgres (sqlite
// for tests and local runs).
package store

import (
	"context"
	"log/slog"

	"github.com/jovie-dev/ingest/store/model"
	"gorm.io/gorm"
)

// Store aggregates the per-entity stores behind one handle.
type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Link() Link
	Profile() Profile
	InitialMigration() error
	Close() error
}

// DataStore implements Store over a gorm connection.
type DataStore struct {
	db      *gorm.DB
	job     Job
	link    Link
	profile Profile
}

// NewStore wraps a gorm connection in a Store.
func NewStore(db *gorm.DB, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	return &DataStore{
		db:      db,
		job:     NewJobStore(db, log),
		link:    NewLinkStore(db),
		profile: NewProfileStore(db),
	}
}

// NewTransactionContext opens a transaction and stashes it in the context.
func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, slog.Default())
}

// Job returns the job queue store.
func (s *DataStore) Job() Job { return s.job }

// Link returns the social link store.
func (s *DataStore) Link() Link { return s.link }

// Profile returns the creator profile store.
func (s *DataStore) Profile() Profile { return s.profile }

// InitialMigration creates the schema via AutoMigrate. Production postgres
// deployments run the goose migrations instead; this path serves sqlite.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.CreatorProfile{},
		&model.SocialLink{},
		&model.IngestionJob{},
	)
}

// Close releases the underlying connection pool.
func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
