package repositories

import (
	"context"
	"fmt"

	"inkbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tattoo counters that IncrementCounter accepts.
const (
	CounterViews  = "view_count"
	CounterLikes  = "like_count"
	CounterShares = "share_count"
)

// TattooFilter narrows a tattoo listing.
type TattooFilter struct {
	Page
	ArtistID string              `json:"artist_id,omitempty" query:"artist_id"`
	TagSlug  string              `json:"tag,omitempty" query:"tag"`
	Status   models.TattooStatus `json:"status,omitempty" query:"status"`
	IsColor  *bool               `json:"is_color,omitempty" query:"is_color"`
	Sort     string              `json:"sort,omitempty" query:"sort"` // recent, popular
}

// TattooRepository defines the interface for tattoo data access.
type TattooRepository interface {
	List(ctx context.Context, filter TattooFilter) ([]models.Tattoo, int64, error)
	GetByID(ctx context.Context, id string) (*models.Tattoo, error)
	Create(ctx context.Context, tattoo *models.Tattoo) error
	Update(ctx context.Context, tattoo *models.Tattoo) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementCounter(ctx context.Context, id, counter string) (*models.Tattoo, error)
}

// GORMTattooRepository is a GORM implementation of TattooRepository.
type GORMTattooRepository struct {
	db *gorm.DB
}

// NewGORMTattooRepository creates a new instance of GORMTattooRepository.
func NewGORMTattooRepository(db *gorm.DB) *GORMTattooRepository {
	return &GORMTattooRepository{db: db}
}

// List returns one page of tattoos matching filter.
func (r *GORMTattooRepository) List(ctx context.Context, filter TattooFilter) ([]models.Tattoo, int64, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Tattoo{})

	if filter.ArtistID != "" {
		q = q.Where("artist_id = ?", filter.ArtistID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.IsColor != nil {
		q = q.Where("is_color = ?", *filter.IsColor)
	}
	if filter.TagSlug != "" {
		tagged := db.Table("tattoo_tags").
			Select("tattoo_tags.tattoo_id").
			Joins("JOIN tags ON tags.id = tattoo_tags.tag_id").
			Where("tags.slug = ?", filter.TagSlug)
		q = q.Where("id IN (?)", tagged)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "tattoo")
	}

	order := "created_at DESC"
	if filter.Sort == "popular" {
		order = "engagement_score DESC, created_at DESC"
	}

	var tattoos []models.Tattoo
	err := q.Preload("Tags").
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&tattoos).Error
	if err != nil {
		return nil, 0, translate(err, "tattoo")
	}
	return tattoos, total, nil
}

// GetByID loads a tattoo with its tags and artist.
func (r *GORMTattooRepository) GetByID(ctx context.Context, id string) (*models.Tattoo, error) {
	var tattoo models.Tattoo
	err := r.db.WithContext(ctx).Preload("Tags").Preload("Artist").First(&tattoo, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "tattoo")
	}
	return &tattoo, nil
}

// Create inserts a tattoo and its tag links.
func (r *GORMTattooRepository) Create(ctx context.Context, tattoo *models.Tattoo) error {
	return translate(r.db.WithContext(ctx).Omit("Artist").Create(tattoo).Error, "tattoo")
}

// Update saves scalar fields of a tattoo.
func (r *GORMTattooRepository) Update(ctx context.Context, tattoo *models.Tattoo) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(tattoo)
	return notFoundIfNoRows(res, "tattoo")
}

// Delete soft-deletes a tattoo.
func (r *GORMTattooRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Tattoo{}, "id = ?", id)
	return notFoundIfNoRows(res, "tattoo")
}

func (r *GORMTattooRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &models.Tattoo{}, slug)
}

// IncrementCounter bumps one engagement counter and refreshes the score in one transaction.
func (r *GORMTattooRepository) IncrementCounter(ctx context.Context, id, counter string) (*models.Tattoo, error) {
	switch counter {
	case CounterViews, CounterLikes, CounterShares:
	default:
		return nil, fmt.Errorf("unknown tattoo counter %q", counter)
	}

	var tattoo models.Tattoo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tattoo{}).Where("id = ?", id).
			UpdateColumn(counter, gorm.Expr(counter+" + ?", 1))
		if err := notFoundIfNoRows(res, "tattoo"); err != nil {
			return err
		}
		if err := tx.First(&tattoo, "id = ?", id).Error; err != nil {
			return translate(err, "tattoo")
		}
		score := tattoo.RecalculateEngagement()
		return tx.Model(&tattoo).UpdateColumn("engagement_score", score).Error
	})
	if err != nil {
		return nil, err
	}
	return &tattoo, nil
}
