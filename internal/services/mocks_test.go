package services_test

import (
	"context"

	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/rabbitmq"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if user.ID == "" {
		user.ID = "user-new"
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

// MockArtistRepository is a mock implementation of repositories.ArtistRepository
type MockArtistRepository struct {
	mock.Mock
}

func (m *MockArtistRepository) List(ctx context.Context, filter repositories.ArtistFilter) ([]models.Artist, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Artist), args.Get(1).(int64), args.Error(2)
}

func (m *MockArtistRepository) artist(args mock.Arguments) (*models.Artist, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artist), args.Error(1)
}

func (m *MockArtistRepository) GetBySlug(ctx context.Context, slug string) (*models.Artist, error) {
	return m.artist(m.Called(ctx, slug))
}

func (m *MockArtistRepository) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	return m.artist(m.Called(ctx, id))
}

func (m *MockArtistRepository) GetByUserID(ctx context.Context, userID string) (*models.Artist, error) {
	return m.artist(m.Called(ctx, userID))
}

func (m *MockArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	args := m.Called(ctx, artist)
	if artist.ID == "" {
		artist.ID = "artist-new"
	}
	return args.Error(0)
}

func (m *MockArtistRepository) Update(ctx context.Context, artist *models.Artist) error {
	return m.Called(ctx, artist).Error(0)
}

func (m *MockArtistRepository) ReplaceStyles(ctx context.Context, artist *models.Artist, styles []models.Tag) error {
	return m.Called(ctx, artist, styles).Error(0)
}

func (m *MockArtistRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockArtistRepository) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockArtistRepository) SaveSalonLink(ctx context.Context, link *models.ArtistSalon) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockArtistRepository) DeleteSalonLink(ctx context.Context, artistID, salonID string) error {
	return m.Called(ctx, artistID, salonID).Error(0)
}

// MockCityRepository is a mock implementation of repositories.CityRepository
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) List(ctx context.Context, country string) ([]models.City, error) {
	args := m.Called(ctx, country)
	return args.Get(0).([]models.City), args.Error(1)
}

func (m *MockCityRepository) GetBySlug(ctx context.Context, slug string) (*models.City, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.City), args.Error(1)
}

func (m *MockCityRepository) GetByID(ctx context.Context, id string) (*models.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.City), args.Error(1)
}

func (m *MockCityRepository) Create(ctx context.Context, city *models.City) error {
	return m.Called(ctx, city).Error(0)
}

func (m *MockCityRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockTagRepository is a mock implementation of repositories.TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) List(ctx context.Context, category models.TagCategory) ([]models.Tag, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	args := m.Called(ctx, slugs)
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *MockTagRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockSalonRepository is a mock implementation of repositories.SalonRepository
type MockSalonRepository struct {
	mock.Mock
}

func (m *MockSalonRepository) List(ctx context.Context, filter repositories.SalonFilter) ([]models.Salon, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Salon), args.Get(1).(int64), args.Error(2)
}

func (m *MockSalonRepository) GetBySlug(ctx context.Context, slug string) (*models.Salon, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Salon), args.Error(1)
}

func (m *MockSalonRepository) GetByID(ctx context.Context, id string) (*models.Salon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Salon), args.Error(1)
}

func (m *MockSalonRepository) Create(ctx context.Context, salon *models.Salon) error {
	return m.Called(ctx, salon).Error(0)
}

func (m *MockSalonRepository) Update(ctx context.Context, salon *models.Salon) error {
	return m.Called(ctx, salon).Error(0)
}

func (m *MockSalonRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockTattooRepository is a mock implementation of repositories.TattooRepository
type MockTattooRepository struct {
	mock.Mock
}

func (m *MockTattooRepository) List(ctx context.Context, filter repositories.TattooFilter) ([]models.Tattoo, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Tattoo), args.Get(1).(int64), args.Error(2)
}

func (m *MockTattooRepository) GetByID(ctx context.Context, id string) (*models.Tattoo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tattoo), args.Error(1)
}

func (m *MockTattooRepository) Create(ctx context.Context, tattoo *models.Tattoo) error {
	args := m.Called(ctx, tattoo)
	if tattoo.ID == "" {
		tattoo.ID = "tattoo-new"
	}
	return args.Error(0)
}

func (m *MockTattooRepository) Update(ctx context.Context, tattoo *models.Tattoo) error {
	return m.Called(ctx, tattoo).Error(0)
}

func (m *MockTattooRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTattooRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockTattooRepository) IncrementCounter(ctx context.Context, id, counter string) (*models.Tattoo, error) {
	args := m.Called(ctx, id, counter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tattoo), args.Error(1)
}

// MockPublisher records published inquiry events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInquiryEvent(event rabbitmq.InquiryEvent) error {
	return m.Called(event).Error(0)
}
