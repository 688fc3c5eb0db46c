package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Per-profile ingestion status values. idle is both the initial state and
// the terminal success state; failed is terminal until externally retried.
const (
	IngestionIdle       = "idle"
	IngestionPending    = "pending"
	IngestionProcessing = "processing"
	IngestionFailed     = "failed"
)

// CreatorProfile is the slice of the creator row this core owns: identity
// plus the projected ingestion status. Everything else about a profile
// belongs to the wider application schema.
type CreatorProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username        string    `gorm:"uniqueIndex"`
	DisplayName     string
	AvatarURL       string
	IngestionStatus string `gorm:"not null;default:idle"`
	IngestionError  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM.
func (CreatorProfile) TableName() string {
	return "creator_profiles"
}

// BeforeCreate assigns an ID when the caller did not.
func (p *CreatorProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
