package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkbook/internal/models"
	"inkbook/pkg/apperror"

	"github.com/google/uuid"
)

// MockInquiryRepository is an in-memory implementation of InquiryRepository.
type MockInquiryRepository struct {
	inquiries map[string]models.ContactInquiry
	mu        sync.RWMutex
}

// NewMockInquiryRepository creates a new instance of MockInquiryRepository.
func NewMockInquiryRepository() *MockInquiryRepository {
	return &MockInquiryRepository{
		inquiries: make(map[string]models.ContactInquiry),
	}
}

// Create adds a new inquiry.
func (r *MockInquiryRepository) Create(_ context.Context, inquiry *models.ContactInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inquiry.ID == "" {
		inquiry.ID = uuid.New().String()
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryPending
	}
	now := time.Now()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now
	r.inquiries[inquiry.ID] = *inquiry
	return nil
}

// GetByID returns an inquiry by its ID.
func (r *MockInquiryRepository) GetByID(_ context.Context, id string) (*models.ContactInquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inquiry, ok := r.inquiries[id]
	if !ok {
		return nil, apperror.NotFound("inquiry")
	}
	return &inquiry, nil
}

// List filters, sorts and pages the stored inquiries.
func (r *MockInquiryRepository) List(_ context.Context, filter InquiryFilter) ([]models.ContactInquiry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.ContactInquiry, 0, len(r.inquiries))
	for _, inq := range r.inquiries {
		if filter.ArtistID != "" && inq.ArtistID != filter.ArtistID {
			continue
		}
		if filter.Status != "" && inq.Status != filter.Status {
			continue
		}
		if filter.MinPriority > 0 && inq.Priority < filter.MinPriority {
			continue
		}
		matched = append(matched, inq)
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.Sort == "priority" && matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Update replaces a stored inquiry.
func (r *MockInquiryRepository) Update(_ context.Context, inquiry *models.ContactInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inquiries[inquiry.ID]; !ok {
		return apperror.NotFound("inquiry")
	}
	inquiry.UpdatedAt = time.Now()
	r.inquiries[inquiry.ID] = *inquiry
	return nil
}

// CountByStatus counts stored inquiries per status.
func (r *MockInquiryRepository) CountByStatus(_ context.Context, artistID string) (map[models.InquiryStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.InquiryStatus]int64)
	for _, inq := range r.inquiries {
		if artistID == "" || inq.ArtistID == artistID {
			counts[inq.Status]++
		}
	}
	return counts, nil
}

// AverageResponseMinutes averages the response time of replied inquiries.
func (r *MockInquiryRepository) AverageResponseMinutes(_ context.Context, artistID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum, n int
	for _, inq := range r.inquiries {
		if inq.ResponseTimeMinutes == nil || (artistID != "" && inq.ArtistID != artistID) {
			continue
		}
		sum += *inq.ResponseTimeMinutes
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}
