package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/store/model"
	"gorm.io/gorm"
)

// Link persists a profile's social links.
type Link interface {
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.SocialLink, error)

	// Get fetches the link at (profileID, platformID, canonicalID), the
	// identity the merge engine dedupes on.
	Get(ctx context.Context, profileID uuid.UUID, platformID, canonicalID string) (*model.SocialLink, error)

	Create(ctx context.Context, link *model.SocialLink) error
	Update(ctx context.Context, link *model.SocialLink) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LinkStore implements the Link interface.
type LinkStore struct {
	db *gorm.DB
}

// Make sure we conform to the Link interface.
var _ Link = (*LinkStore)(nil)

// NewLinkStore creates a new social link store.
func NewLinkStore(db *gorm.DB) Link {
	return &LinkStore{db: db}
}

func (s *LinkStore) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.SocialLink, error) {
	var rows []model.SocialLink
	err := s.getDB(ctx).
		Where("creator_profile_id = ?", profileID).
		Order("platform_id ASC, canonical_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	return rows, nil
}

func (s *LinkStore) Get(ctx context.Context, profileID uuid.UUID, platformID, canonicalID string) (*model.SocialLink, error) {
	var row model.SocialLink
	err := s.getDB(ctx).
		Where("creator_profile_id = ? AND platform_id = ? AND canonical_id = ?",
			profileID, platformID, canonicalID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying link: %w", err)
	}
	return &row, nil
}

func (s *LinkStore) Create(ctx context.Context, link *model.SocialLink) error {
	if err := s.getDB(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("creating link: %w", err)
	}
	return nil
}

func (s *LinkStore) Update(ctx context.Context, link *model.SocialLink) error {
	result := s.getDB(ctx).Model(&model.SocialLink{}).
		Where("id = ?", link.ID).
		Updates(map[string]any{
			"url":           link.URL,
			"source":        link.Source,
			"confidence":    link.Confidence,
			"discovered_on": link.DiscoveredOn,
		})
	if result.Error != nil {
		return fmt.Errorf("updating link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *LinkStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Delete(&model.SocialLink{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *LinkStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
