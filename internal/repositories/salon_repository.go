package repositories

import (
	"context"
	"strings"

	"inkbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalonFilter narrows a salon listing.
type SalonFilter struct {
	Page
	CitySlug     string `json:"city,omitempty" query:"city"`
	VerifiedOnly bool   `json:"verified,omitempty" query:"verified"`
	Query        string `json:"q,omitempty" query:"q"`
}

// SalonRepository defines the interface for salon data access.
type SalonRepository interface {
	List(ctx context.Context, filter SalonFilter) ([]models.Salon, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Salon, error)
	GetByID(ctx context.Context, id string) (*models.Salon, error)
	Create(ctx context.Context, salon *models.Salon) error
	Update(ctx context.Context, salon *models.Salon) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// GORMSalonRepository is a GORM implementation of SalonRepository.
type GORMSalonRepository struct {
	db *gorm.DB
}

// NewGORMSalonRepository creates a new instance of GORMSalonRepository.
func NewGORMSalonRepository(db *gorm.DB) *GORMSalonRepository {
	return &GORMSalonRepository{db: db}
}

// List returns one page of salons ordered by name.
func (r *GORMSalonRepository) List(ctx context.Context, filter SalonFilter) ([]models.Salon, int64, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Salon{})

	if filter.CitySlug != "" {
		q = q.Where("city_id IN (?)", db.Model(&models.City{}).Select("id").Where("slug = ?", filter.CitySlug))
	}
	if filter.VerifiedOnly {
		q = q.Where("verification_status = ?", models.VerificationVerified)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "salon")
	}

	var salons []models.Salon
	err := q.Preload("City").
		Order("name ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&salons).Error
	if err != nil {
		return nil, 0, translate(err, "salon")
	}
	return salons, total, nil
}

// GetBySlug loads a salon with its active artists.
func (r *GORMSalonRepository) GetBySlug(ctx context.Context, slug string) (*models.Salon, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GORMSalonRepository) GetByID(ctx context.Context, id string) (*models.Salon, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMSalonRepository) first(ctx context.Context, query string, arg string) (*models.Salon, error) {
	var salon models.Salon
	err := r.db.WithContext(ctx).
		Preload("City").
		Preload("Artists", "is_active = ?", true).
		Preload("Artists.Artist").
		First(&salon, query, arg).Error
	if err != nil {
		return nil, translate(err, "salon")
	}
	return &salon, nil
}

func (r *GORMSalonRepository) Create(ctx context.Context, salon *models.Salon) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(salon).Error, "salon")
}

func (r *GORMSalonRepository) Update(ctx context.Context, salon *models.Salon) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(salon)
	return notFoundIfNoRows(res, "salon")
}

func (r *GORMSalonRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &models.Salon{}, slug)
}
