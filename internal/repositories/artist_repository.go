package repositories

import (
	"context"
	"strings"

	"inkbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArtistFilter narrows an artist listing.
type ArtistFilter struct {
	Page
	CitySlug      string `json:"city,omitempty" query:"city"`
	StyleSlug     string `json:"style,omitempty" query:"style"`
	VerifiedOnly  bool   `json:"verified,omitempty" query:"verified"`
	AcceptingOnly bool   `json:"accepting,omitempty" query:"accepting"`
	Query         string `json:"q,omitempty" query:"q"`
	Sort          string `json:"sort,omitempty" query:"sort"` // recent, popular, name, price
}

// ArtistRepository defines the interface for artist data access.
type ArtistRepository interface {
	List(ctx context.Context, filter ArtistFilter) ([]models.Artist, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Artist, error)
	GetByID(ctx context.Context, id string) (*models.Artist, error)
	GetByUserID(ctx context.Context, userID string) (*models.Artist, error)
	Create(ctx context.Context, artist *models.Artist) error
	Update(ctx context.Context, artist *models.Artist) error
	ReplaceStyles(ctx context.Context, artist *models.Artist, styles []models.Tag) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	SaveSalonLink(ctx context.Context, link *models.ArtistSalon) error
	DeleteSalonLink(ctx context.Context, artistID, salonID string) error
}

// GORMArtistRepository is a GORM implementation of ArtistRepository.
type GORMArtistRepository struct {
	db *gorm.DB
}

// NewGORMArtistRepository creates a new instance of GORMArtistRepository.
func NewGORMArtistRepository(db *gorm.DB) *GORMArtistRepository {
	return &GORMArtistRepository{db: db}
}

var artistSorts = map[string]string{
	"recent":  "created_at DESC",
	"popular": "view_count DESC",
	"name":    "stage_name ASC",
	"price":   "hourly_rate ASC",
}

// List returns one page of artists matching filter and the total match count.
func (r *GORMArtistRepository) List(ctx context.Context, filter ArtistFilter) ([]models.Artist, int64, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Artist{})

	if filter.CitySlug != "" {
		q = q.Where("city_id IN (?)", db.Model(&models.City{}).Select("id").Where("slug = ?", filter.CitySlug))
	}
	if filter.StyleSlug != "" {
		styled := db.Table("artist_styles").
			Select("artist_styles.artist_id").
			Joins("JOIN tags ON tags.id = artist_styles.tag_id").
			Where("tags.slug = ?", filter.StyleSlug)
		q = q.Where("id IN (?)", styled)
	}
	if filter.VerifiedOnly {
		q = q.Where("verification_status = ?", models.VerificationVerified)
	}
	if filter.AcceptingOnly {
		q = q.Where("accepting_bookings = ?", true)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(stage_name) LIKE ? OR LOWER(bio) LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "artist")
	}

	order, ok := artistSorts[filter.Sort]
	if !ok {
		order = artistSorts["recent"]
	}

	var artists []models.Artist
	err := q.Preload("City").Preload("Styles").
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&artists).Error
	if err != nil {
		return nil, 0, translate(err, "artist")
	}
	return artists, total, nil
}

// GetBySlug loads the full public profile of an artist.
func (r *GORMArtistRepository) GetBySlug(ctx context.Context, slug string) (*models.Artist, error) {
	return r.first(ctx, "slug = ?", slug)
}

// GetByID loads an artist by primary key.
func (r *GORMArtistRepository) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUserID loads the artist profile owned by a user.
func (r *GORMArtistRepository) GetByUserID(ctx context.Context, userID string) (*models.Artist, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *GORMArtistRepository) first(ctx context.Context, query string, arg string) (*models.Artist, error) {
	var artist models.Artist
	err := r.db.WithContext(ctx).
		Preload("City").
		Preload("Styles").
		Preload("Salons", "is_active = ?", true).
		Preload("Salons.Salon").
		First(&artist, query, arg).Error
	if err != nil {
		return nil, translate(err, "artist")
	}
	return &artist, nil
}

// Create inserts an artist together with its style links.
func (r *GORMArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	return translate(r.db.WithContext(ctx).Omit("City", "Salons").Create(artist).Error, "artist")
}

// Update saves scalar fields; associations are changed through their own methods.
func (r *GORMArtistRepository) Update(ctx context.Context, artist *models.Artist) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(artist)
	return notFoundIfNoRows(res, "artist")
}

// ReplaceStyles swaps the style tags of an artist.
func (r *GORMArtistRepository) ReplaceStyles(ctx context.Context, artist *models.Artist, styles []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(artist).Association("Styles").Replace(styles); err != nil {
		return translate(err, "artist styles")
	}
	artist.Styles = styles
	return nil
}

func (r *GORMArtistRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &models.Artist{}, slug)
}

// IncrementViews bumps the profile view counter without touching updated_at.
func (r *GORMArtistRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Artist{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return notFoundIfNoRows(res, "artist")
}

// SaveSalonLink inserts or updates an artist-salon relationship.
func (r *GORMArtistRepository) SaveSalonLink(ctx context.Context, link *models.ArtistSalon) error {
	return translate(r.db.WithContext(ctx).Omit("Artist", "Salon").Save(link).Error, "artist salon link")
}

// DeleteSalonLink removes an artist-salon relationship.
func (r *GORMArtistRepository) DeleteSalonLink(ctx context.Context, artistID, salonID string) error {
	res := r.db.WithContext(ctx).Where("artist_id = ? AND salon_id = ?", artistID, salonID).Delete(&models.ArtistSalon{})
	return notFoundIfNoRows(res, "artist salon link")
}
