package repositories

import (
	"context"

	"inkbook/internal/models"

	"gorm.io/gorm"
)

// CityRepository defines the interface for city data access.
type CityRepository interface {
	List(ctx context.Context, country string) ([]models.City, error)
	GetBySlug(ctx context.Context, slug string) (*models.City, error)
	GetByID(ctx context.Context, id string) (*models.City, error)
	Create(ctx context.Context, city *models.City) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	List(ctx context.Context, category models.TagCategory) ([]models.Tag, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// GORMCityRepository is a GORM implementation of CityRepository.
type GORMCityRepository struct {
	db *gorm.DB
}

func NewGORMCityRepository(db *gorm.DB) *GORMCityRepository {
	return &GORMCityRepository{db: db}
}

// List returns cities ordered by name, optionally restricted to one country.
func (r *GORMCityRepository) List(ctx context.Context, country string) ([]models.City, error) {
	var cities []models.City
	q := r.db.WithContext(ctx).Order("name ASC")
	if country != "" {
		q = q.Where("country = ?", country)
	}
	if err := q.Find(&cities).Error; err != nil {
		return nil, translate(err, "city")
	}
	return cities, nil
}

func (r *GORMCityRepository) GetBySlug(ctx context.Context, slug string) (*models.City, error) {
	var city models.City
	if err := r.db.WithContext(ctx).First(&city, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, "city")
	}
	return &city, nil
}

func (r *GORMCityRepository) GetByID(ctx context.Context, id string) (*models.City, error) {
	var city models.City
	if err := r.db.WithContext(ctx).First(&city, "id = ?", id).Error; err != nil {
		return nil, translate(err, "city")
	}
	return &city, nil
}

func (r *GORMCityRepository) Create(ctx context.Context, city *models.City) error {
	return translate(r.db.WithContext(ctx).Create(city).Error, "city")
}

func (r *GORMCityRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &models.City{}, slug)
}

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

// List returns tags ordered by name, optionally restricted to one category.
func (r *GORMTagRepository) List(ctx context.Context, category models.TagCategory) ([]models.Tag, error) {
	var tags []models.Tag
	q := r.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&tags).Error; err != nil {
		return nil, translate(err, "tag")
	}
	return tags, nil
}

// GetBySlugs returns the tags matching slugs. Unknown slugs are ignored.
func (r *GORMTagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
		return nil, translate(err, "tag")
	}
	return tags, nil
}

func (r *GORMTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return translate(r.db.WithContext(ctx).Create(tag).Error, "tag")
}

func (r *GORMTagRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &models.Tag{}, slug)
}

// slugExists checks a slug column, including soft-deleted rows since the unique index covers them.
func slugExists(db *gorm.DB, model interface{}, slug string) (bool, error) {
	var count int64
	if err := db.Unscoped().Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
