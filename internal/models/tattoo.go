package models

import (
	"math"
	"time"

	"inkbook/pkg/apperror"

	"gorm.io/datatypes"
)

// TattooStatus is the publication state of a portfolio piece.
type TattooStatus string

const (
	TattooDraft         TattooStatus = "draft"
	TattooPendingReview TattooStatus = "pending_review"
	TattooPublished     TattooStatus = "published"
	TattooArchived      TattooStatus = "archived"
)

// Engagement weights.
const (
	viewWeight  = 1.0
	likeWeight  = 3.0
	shareWeight = 5.0
)

// Tattoo is one portfolio image of an artist.
type Tattoo struct {
	Base
	ArtistID        string            `json:"artist_id" gorm:"type:varchar(36);not null;index"`
	Artist          *Artist           `json:"artist,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Title           string            `json:"title" gorm:"type:varchar(150);not null"`
	Slug            string            `json:"slug" gorm:"type:varchar(170);uniqueIndex;not null"`
	Description     string            `json:"description" gorm:"type:text"`
	BodyPlacement   string            `json:"body_placement,omitempty" gorm:"type:varchar(50)"`
	Size            string            `json:"size,omitempty" gorm:"type:varchar(20)"`
	IsColor         bool              `json:"is_color"`
	ImageKey        string            `json:"-" gorm:"type:varchar(255)"`
	ImageVariants   datatypes.JSONMap `json:"image_variants,omitempty"`
	Width           int               `json:"width,omitempty"`
	Height          int               `json:"height,omitempty"`
	Status          TattooStatus      `json:"status" gorm:"type:varchar(20);default:draft;not null;index"`
	PublishedAt     *time.Time        `json:"published_at,omitempty"`
	ViewCount       int64             `json:"view_count" gorm:"not null;default:0"`
	LikeCount       int64             `json:"like_count" gorm:"not null;default:0"`
	ShareCount      int64             `json:"share_count" gorm:"not null;default:0"`
	EngagementScore float64           `json:"engagement_score" gorm:"not null;default:0;index"`
	Tags            []Tag             `json:"tags,omitempty" gorm:"many2many:tattoo_tags"`
}

// Valid reports whether s is a known tattoo status.
func (s TattooStatus) Valid() bool {
	switch s {
	case TattooDraft, TattooPendingReview, TattooPublished, TattooArchived:
		return true
	}
	return false
}

// IsPublished reports whether the tattoo is publicly visible.
func (t *Tattoo) IsPublished() bool {
	return t.Status == TattooPublished
}

// RecalculateEngagement refreshes EngagementScore from the counters.
func (t *Tattoo) RecalculateEngagement() float64 {
	raw := float64(t.ViewCount)*viewWeight + float64(t.LikeCount)*likeWeight + float64(t.ShareCount)*shareWeight
	t.EngagementScore = math.Round(raw*100) / 100
	return t.EngagementScore
}

// SubmitForReview moves a draft into the review queue.
func (t *Tattoo) SubmitForReview() error {
	if t.Status != TattooDraft {
		return apperror.New(apperror.CodeInvalidState, "only drafts can be submitted for review (status is %s)", t.Status)
	}
	if t.ImageKey == "" {
		return apperror.New(apperror.CodeValidation, "an image must be uploaded before review")
	}
	t.Status = TattooPendingReview
	return nil
}

// Publish makes the tattoo public.
func (t *Tattoo) Publish(now time.Time) error {
	if t.Status != TattooPendingReview && t.Status != TattooDraft {
		return apperror.New(apperror.CodeInvalidState, "cannot publish a tattoo with status %s", t.Status)
	}
	if t.ImageKey == "" {
		return apperror.New(apperror.CodeValidation, "an image must be uploaded before publishing")
	}
	t.Status = TattooPublished
	t.PublishedAt = &now
	return nil
}

// Archive hides the tattoo from listings. Archiving twice is a no-op.
func (t *Tattoo) Archive() {
	t.Status = TattooArchived
}
