package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ArtistService handles artist profiles and their salon links.
type ArtistService struct {
	artists repositories.ArtistRepository
	users   repositories.UserRepository
	cities  repositories.CityRepository
	tags    repositories.TagRepository
	salons  repositories.SalonRepository
	cache   cache.QueryCache
	now     func() time.Time
}

// NewArtistService creates a new ArtistService. queryCache may be nil.
func NewArtistService(
	artists repositories.ArtistRepository,
	users repositories.UserRepository,
	cities repositories.CityRepository,
	tags repositories.TagRepository,
	salons repositories.SalonRepository,
	queryCache cache.QueryCache,
) *ArtistService {
	return &ArtistService{
		artists: artists,
		users:   users,
		cities:  cities,
		tags:    tags,
		salons:  salons,
		cache:   queryCache,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ArtistInput carries the editable profile fields. Nil pointers leave a field unchanged on update.
type ArtistInput struct {
	StageName         *string          `json:"stage_name" validate:"omitempty,min=2,max=100"`
	Bio               *string          `json:"bio" validate:"omitempty,max=5000"`
	CitySlug          *string          `json:"city" validate:"omitempty,max=120"`
	HourlyRate        *decimal.Decimal `json:"hourly_rate"`
	MinimumPrice      *decimal.Decimal `json:"minimum_price"`
	Currency          *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Availability      json.RawMessage  `json:"availability"`
	AcceptingBookings *bool            `json:"accepting_bookings"`
	Instagram         *string          `json:"instagram" validate:"omitempty,max=100"`
	Website           *string          `json:"website" validate:"omitempty,url,max=255"`
	YearsExperience   *int             `json:"years_experience" validate:"omitempty,min=0,max=80"`
	StyleSlugs        []string         `json:"styles" validate:"omitempty,max=10,dive,required"`
}

// AttachSalonInput links an artist to a salon.
type AttachSalonInput struct {
	SalonID        string          `json:"salon_id" validate:"required,uuid"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Schedule       json.RawMessage `json:"schedule"`
	StartedAt      *time.Time      `json:"started_at"`
}

// List returns a page of artists. Results are memoized per filter.
func (s *ArtistService) List(ctx context.Context, filter repositories.ArtistFilter) ([]models.Artist, int64, error) {
	filter.Page = filter.Page.Normalize()
	return rememberList(ctx, s.cache, cache.Key("artists.list", filter), func() ([]models.Artist, int64, error) {
		return s.artists.List(ctx, filter)
	})
}

// GetBySlug returns a public profile and counts the view.
// The profile is memoized; the view counter is written straight through.
func (s *ArtistService) GetBySlug(ctx context.Context, slug string) (*models.Artist, error) {
	artist, err := cache.Remember(ctx, s.cache, cache.Key("artists.slug", slug), func() (*models.Artist, error) {
		return s.artists.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if err := s.artists.IncrementViews(ctx, artist.ID); err != nil {
		log.Warn().Err(err).Str("artist_id", artist.ID).Msg("failed to count profile view")
	} else {
		artist.ViewCount++
	}
	return artist, nil
}

// GetByID returns an artist without counting a view.
func (s *ArtistService) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	return s.artists.GetByID(ctx, id)
}

// Create opens an artist profile for the actor. Each user has at most one profile,
// and a client creating one becomes an artist.
func (s *ArtistService) Create(ctx context.Context, actor Actor, in ArtistInput) (*models.Artist, error) {
	if in.StageName == nil || strings.TrimSpace(*in.StageName) == "" {
		return nil, apperror.New(apperror.CodeValidation, "stage_name is required")
	}
	if _, err := s.artists.GetByUserID(ctx, actor.UserID); err == nil {
		return nil, apperror.New(apperror.CodeConflict, "user already has an artist profile")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	artist := &models.Artist{
		UserID:             actor.UserID,
		Currency:           "EUR",
		AcceptingBookings:  true,
		VerificationStatus: models.VerificationUnverified,
	}
	if err := s.apply(ctx, artist, in); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, artist.StageName, s.artists.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate artist slug: %w", err)
	}
	artist.Slug = slug

	if err := s.artists.Create(ctx, artist); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleClient {
		if err := s.users.UpdateRole(ctx, actor.UserID, models.RoleArtist); err != nil {
			return nil, fmt.Errorf("failed to promote user to artist: %w", err)
		}
	}

	flush(ctx, s.cache)
	log.Info().Str("artist_id", artist.ID).Str("slug", artist.Slug).Msg("artist profile created")
	return artist, nil
}

// Update edits a profile. Only the owner or an admin may do so. The slug is stable.
func (s *ArtistService) Update(ctx context.Context, actor Actor, id string, in ArtistInput) (*models.Artist, error) {
	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageArtist(actor, artist) {
		return nil, apperror.New(apperror.CodeForbidden, "you cannot edit this artist")
	}

	if err := s.apply(ctx, artist, in); err != nil {
		return nil, err
	}
	styles := artist.Styles
	if err := s.artists.Update(ctx, artist); err != nil {
		return nil, err
	}
	if in.StyleSlugs != nil {
		if err := s.artists.ReplaceStyles(ctx, artist, styles); err != nil {
			return nil, err
		}
	}

	flush(ctx, s.cache)
	return artist, nil
}

// UpdateVerification moves an artist through the vetting pipeline. Admin only.
func (s *ArtistService) UpdateVerification(ctx context.Context, actor Actor, id string, status models.VerificationStatus) (*models.Artist, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "unknown verification status %q", status)
	}
	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	artist.SetVerification(status, s.now())
	if err := s.artists.Update(ctx, artist); err != nil {
		return nil, err
	}

	flush(ctx, s.cache)
	log.Info().Str("artist_id", artist.ID).Str("status", string(status)).Msg("artist verification changed")
	return artist, nil
}

// AttachSalon links the artist to a salon, or updates an existing link.
// Only the salon's owner and admins may add artists to it.
func (s *ArtistService) AttachSalon(ctx context.Context, actor Actor, artistID string, in AttachSalonInput) (*models.ArtistSalon, error) {
	artist, err := s.artists.GetByID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	salon, err := s.salons.GetByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	if !canManageSalon(actor, salon) {
		return nil, apperror.New(apperror.CodeForbidden, "only the salon owner can add artists")
	}
	if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.New(apperror.CodeValidation, "commission_rate must be between 0 and 100")
	}

	link := &models.ArtistSalon{
		ArtistID:       artist.ID,
		SalonID:        salon.ID,
		CommissionRate: in.CommissionRate.Round(2),
		IsActive:       true,
		StartedAt:      s.now(),
	}
	if in.StartedAt != nil {
		link.StartedAt = in.StartedAt.UTC()
	}
	if len(in.Schedule) > 0 {
		if !json.Valid(in.Schedule) {
			return nil, apperror.New(apperror.CodeValidation, "schedule must be valid JSON")
		}
		link.Schedule = datatypes.JSON(in.Schedule)
	}
	if err := s.artists.SaveSalonLink(ctx, link); err != nil {
		return nil, err
	}

	flush(ctx, s.cache)
	link.Salon = salon
	return link, nil
}

// DetachSalon removes the link between an artist and a salon. The artist
// may leave; the salon owner may remove them.
func (s *ArtistService) DetachSalon(ctx context.Context, actor Actor, artistID, salonID string) error {
	artist, err := s.artists.GetByID(ctx, artistID)
	if err != nil {
		return err
	}
	if !canManageArtist(actor, artist) {
		salon, err := s.salons.GetByID(ctx, salonID)
		if err != nil {
			return err
		}
		if !canManageSalon(actor, salon) {
			return apperror.New(apperror.CodeForbidden, "you cannot edit this artist")
		}
	}
	if err := s.artists.DeleteSalonLink(ctx, artist.ID, salonID); err != nil {
		return err
	}
	flush(ctx, s.cache)
	return nil
}

// apply copies the set fields of in onto artist, resolving city and style slugs.
func (s *ArtistService) apply(ctx context.Context, artist *models.Artist, in ArtistInput) error {
	if in.StageName != nil {
		artist.StageName = strings.TrimSpace(*in.StageName)
	}
	if in.Bio != nil {
		artist.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.CitySlug != nil {
		if *in.CitySlug == "" {
			artist.CityID = nil
			artist.City = nil
		} else {
			city, err := s.cities.GetBySlug(ctx, *in.CitySlug)
			if err != nil {
				return err
			}
			artist.CityID = &city.ID
			artist.City = city
		}
	}
	if in.HourlyRate != nil {
		if in.HourlyRate.IsNegative() {
			return apperror.New(apperror.CodeValidation, "hourly_rate cannot be negative")
		}
		artist.HourlyRate = decimal.NewNullDecimal(in.HourlyRate.Round(2))
	}
	if in.MinimumPrice != nil {
		if in.MinimumPrice.IsNegative() {
			return apperror.New(apperror.CodeValidation, "minimum_price cannot be negative")
		}
		artist.MinimumPrice = decimal.NewNullDecimal(in.MinimumPrice.Round(2))
	}
	if in.Currency != nil {
		artist.Currency = strings.ToUpper(*in.Currency)
	}
	if len(in.Availability) > 0 {
		if !json.Valid(in.Availability) {
			return apperror.New(apperror.CodeValidation, "availability must be valid JSON")
		}
		artist.Availability = datatypes.JSON(in.Availability)
	}
	if in.AcceptingBookings != nil {
		artist.AcceptingBookings = *in.AcceptingBookings
	}
	if in.Instagram != nil {
		artist.Instagram = strings.TrimPrefix(strings.TrimSpace(*in.Instagram), "@")
	}
	if in.Website != nil {
		artist.Website = strings.TrimSpace(*in.Website)
	}
	if in.YearsExperience != nil {
		artist.YearsExperience = *in.YearsExperience
	}
	if in.StyleSlugs != nil {
		styles, err := s.resolveStyles(ctx, in.StyleSlugs)
		if err != nil {
			return err
		}
		artist.Styles = styles
	}
	return nil
}

func (s *ArtistService) resolveStyles(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return []models.Tag{}, nil
	}
	tags, err := s.tags.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t.Category != models.TagStyle {
			return nil, apperror.New(apperror.CodeValidation, "tag %q is not a style", t.Slug)
		}
		found[t.Slug] = true
	}
	for _, slug := range slugs {
		if !found[slug] {
			return nil, apperror.New(apperror.CodeValidation, "unknown style %q", slug)
		}
	}
	return tags, nil
}
