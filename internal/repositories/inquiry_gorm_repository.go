package repositories

import (
	"context"
	"database/sql"

	"inkbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMInquiryRepository is a GORM implementation of InquiryRepository.
type GORMInquiryRepository struct {
	db *gorm.DB
}

// NewGORMInquiryRepository creates a new instance of GORMInquiryRepository.
func NewGORMInquiryRepository(db *gorm.DB) *GORMInquiryRepository {
	return &GORMInquiryRepository{db: db}
}

func (r *GORMInquiryRepository) Create(ctx context.Context, inquiry *models.ContactInquiry) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(inquiry).Error, "inquiry")
}

func (r *GORMInquiryRepository) GetByID(ctx context.Context, id string) (*models.ContactInquiry, error) {
	var inquiry models.ContactInquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "inquiry")
	}
	return &inquiry, nil
}

// List returns one page of inquiries, newest first unless sorted by priority.
func (r *GORMInquiryRepository) List(ctx context.Context, filter InquiryFilter) ([]models.ContactInquiry, int64, error) {
	q := r.scoped(ctx, filter.ArtistID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MinPriority > 0 {
		q = q.Where("priority >= ?", filter.MinPriority)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "inquiry")
	}

	order := "created_at DESC"
	if filter.Sort == "priority" {
		order = "priority DESC, created_at DESC"
	}

	var inquiries []models.ContactInquiry
	err := q.Order(order).Offset(filter.Offset()).Limit(filter.Limit()).Find(&inquiries).Error
	if err != nil {
		return nil, 0, translate(err, "inquiry")
	}
	return inquiries, total, nil
}

func (r *GORMInquiryRepository) Update(ctx context.Context, inquiry *models.ContactInquiry) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(inquiry)
	return notFoundIfNoRows(res, "inquiry")
}

// CountByStatus counts inquiries per status, for one artist or all when artistID is empty.
func (r *GORMInquiryRepository) CountByStatus(ctx context.Context, artistID string) (map[models.InquiryStatus]int64, error) {
	var rows []struct {
		Status models.InquiryStatus
		Count  int64
	}
	err := r.scoped(ctx, artistID).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "inquiry")
	}

	counts := make(map[models.InquiryStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AverageResponseMinutes averages response_time_minutes over replied inquiries.
func (r *GORMInquiryRepository) AverageResponseMinutes(ctx context.Context, artistID string) (float64, error) {
	var avg sql.NullFloat64
	err := r.scoped(ctx, artistID).
		Where("response_time_minutes IS NOT NULL").
		Select("AVG(response_time_minutes)").
		Scan(&avg).Error
	if err != nil {
		return 0, translate(err, "inquiry")
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (r *GORMInquiryRepository) scoped(ctx context.Context, artistID string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.ContactInquiry{})
	if artistID != "" {
		q = q.Where("artist_id = ?", artistID)
	}
	return q
}
