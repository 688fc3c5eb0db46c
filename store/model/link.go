package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link source values, in ascending precedence: a scraped link never
// overwrites a manual one, a manual link never overwrites a verified one.
const (
	LinkSourceScraped  = "scraped"
	LinkSourceManual   = "manual"
	LinkSourceVerified = "verified"
)

// sourceRank orders link sources for precedence comparisons.
var sourceRank = map[string]int{
	LinkSourceScraped:  0,
	LinkSourceManual:   1,
	LinkSourceVerified: 2,
}

// SourceRank returns the precedence rank of a link source. Unknown sources
// rank below scraped.
func SourceRank(source string) int {
	if r, ok := sourceRank[source]; ok {
		return r
	}
	return -1
}

// SocialLink is one canonical link on a creator profile. Scraped and
// verified rows are written only by the merge engine; manual rows come from
// the dashboard and are off-limits to ingestion.
type SocialLink struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatorProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_links_identity"`
	PlatformID       string    `gorm:"not null;uniqueIndex:idx_links_identity"`
	CanonicalID      string    `gorm:"not null;uniqueIndex:idx_links_identity"`
	URL              string    `gorm:"not null"`
	Source           string    `gorm:"not null;default:scraped"`
	Confidence       float64   `gorm:"not null;default:0"`
	DiscoveredOn     string    // platform of the page the link was scraped from
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM.
func (SocialLink) TableName() string {
	return "social_links"
}

// BeforeCreate assigns an ID when the caller did not.
func (l *SocialLink) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
