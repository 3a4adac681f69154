package repositories

import (
	"context"

	"inkbook/internal/models"
)

// InquiryFilter narrows an inquiry listing.
type InquiryFilter struct {
	Page
	ArtistID    string               `json:"artist_id,omitempty" query:"artist_id"`
	Status      models.InquiryStatus `json:"status,omitempty" query:"status"`
	MinPriority int                  `json:"min_priority,omitempty" query:"min_priority"`
	Sort        string               `json:"sort,omitempty" query:"sort"` // recent, priority
}

// InquiryRepository defines the interface for contact inquiry data access.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.ContactInquiry) error
	GetByID(ctx context.Context, id string) (*models.ContactInquiry, error)
	List(ctx context.Context, filter InquiryFilter) ([]models.ContactInquiry, int64, error)
	Update(ctx context.Context, inquiry *models.ContactInquiry) error
	CountByStatus(ctx context.Context, artistID string) (map[models.InquiryStatus]int64, error)
	AverageResponseMinutes(ctx context.Context, artistID string) (float64, error)
}
