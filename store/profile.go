package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/store/model"
	"gorm.io/gorm"
)

// Profile persists creator profiles and their ingestion status.
type Profile interface {
	Get(ctx context.Context, id uuid.UUID) (*model.CreatorProfile, error)
	GetByUsername(ctx context.Context, username string) (*model.CreatorProfile, error)
	Create(ctx context.Context, profile *model.CreatorProfile) error

	// SetIngestionStatus moves the profile's ingestion status, enforcing
	// legal transitions at the database: the update is conditional on the
	// current status being one of from. Empty from means unconditional.
	SetIngestionStatus(ctx context.Context, id uuid.UUID, to, errMsg string, from ...string) error

	// UpdateIdentity fills display name and avatar from a scraped page,
	// never overwriting values already present.
	UpdateIdentity(ctx context.Context, id uuid.UUID, displayName, avatarURL string) error
}

// ProfileStore implements the Profile interface.
type ProfileStore struct {
	db *gorm.DB
}

// Make sure we conform to the Profile interface.
var _ Profile = (*ProfileStore)(nil)

// NewProfileStore creates a new creator profile store.
func NewProfileStore(db *gorm.DB) Profile {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, id uuid.UUID) (*model.CreatorProfile, error) {
	var row model.CreatorProfile
	if err := s.getDB(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &row, nil
}

func (s *ProfileStore) GetByUsername(ctx context.Context, username string) (*model.CreatorProfile, error) {
	var row model.CreatorProfile
	if err := s.getDB(ctx).First(&row, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &row, nil
}

func (s *ProfileStore) Create(ctx context.Context, profile *model.CreatorProfile) error {
	if profile.IngestionStatus == "" {
		profile.IngestionStatus = model.IngestionIdle
	}
	if err := s.getDB(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("creating profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) SetIngestionStatus(ctx context.Context, id uuid.UUID, to, errMsg string, from ...string) error {
	q := s.getDB(ctx).Model(&model.CreatorProfile{}).Where("id = ?", id)
	if len(from) > 0 {
		q = q.Where("ingestion_status IN ?", from)
	}

	result := q.Updates(map[string]any{
		"ingestion_status": to,
		"ingestion_error":  errMsg,
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("updating ingestion status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *ProfileStore) UpdateIdentity(ctx context.Context, id uuid.UUID, displayName, avatarURL string) error {
	updates := map[string]any{}
	if displayName != "" {
		updates["display_name"] = gorm.Expr(
			"CASE WHEN display_name = '' OR display_name IS NULL THEN ? ELSE display_name END", displayName)
	}
	if avatarURL != "" {
		updates["avatar_url"] = gorm.Expr(
			"CASE WHEN avatar_url = '' OR avatar_url IS NULL THEN ? ELSE avatar_url END", avatarURL)
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.getDB(ctx).Model(&model.CreatorProfile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("updating profile identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *ProfileStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
