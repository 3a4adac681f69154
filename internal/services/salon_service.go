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

// SalonService handles tattoo studios.
type SalonService struct {
	salons  repositories.SalonRepository
	artists repositories.ArtistRepository
	cities  repositories.CityRepository
	cache   cache.QueryCache
}

// NewSalonService creates a new SalonService. queryCache may be nil.
func NewSalonService(salons repositories.SalonRepository, artists repositories.ArtistRepository, cities repositories.CityRepository, queryCache cache.QueryCache) *SalonService {
	return &SalonService{
		salons:  salons,
		artists: artists,
		cities:  cities,
		cache:   queryCache,
	}
}

// SalonInput carries the editable salon fields. Nil pointers leave a field unchanged on update.
type SalonInput struct {
	Name         *string         `json:"name" validate:"omitempty,min=2,max=150"`
	CitySlug     *string         `json:"city" validate:"omitempty,max=120"`
	Address      *string         `json:"address" validate:"omitempty,max=255"`
	Phone        *string         `json:"phone" validate:"omitempty,max=30"`
	Email        *string         `json:"email" validate:"omitempty,email,max=255"`
	Website      *string         `json:"website" validate:"omitempty,url,max=255"`
	Description  *string         `json:"description" validate:"omitempty,max=5000"`
	OpeningHours json.RawMessage `json:"opening_hours"`
}

// List returns a page of salons. Results are memoized per filter.
func (s *SalonService) List(ctx context.Context, filter repositories.SalonFilter) ([]models.Salon, int64, error) {
	filter.Page = filter.Page.Normalize()
	return rememberList(ctx, s.cache, cache.Key("salons.list", filter), func() ([]models.Salon, int64, error) {
		return s.salons.List(ctx, filter)
	})
}

// GetBySlug returns a salon with its active artists.
func (s *SalonService) GetBySlug(ctx context.Context, slug string) (*models.Salon, error) {
	return cache.Remember(ctx, s.cache, cache.Key("salons.slug", slug), func() (*models.Salon, error) {
		return s.salons.GetBySlug(ctx, slug)
	})
}

// Create registers a salon owned by the actor. Artists with a profile and
// admins may create salons; the creating artist is linked as a resident.
func (s *SalonService) Create(ctx context.Context, actor Actor, in SalonInput) (*models.Salon, error) {
	var resident *models.Artist
	if !actor.IsAdmin() {
		artist, err := s.artists.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.New(apperror.CodeForbidden, "only artists can register salons")
			}
			return nil, err
		}
		resident = artist
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperror.New(apperror.CodeValidation, "name is required")
	}

	salon := &models.Salon{VerificationStatus: models.VerificationUnverified}
	if actor.UserID != "" {
		owner := actor.UserID
		salon.OwnerID = &owner
	}
	if err := s.apply(ctx, salon, in); err != nil {
		return nil, err
	}
	slug, err := uniqueSlug(ctx, salon.Name, s.salons.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salon slug: %w", err)
	}
	salon.Slug = slug

	if err := s.salons.Create(ctx, salon); err != nil {
		return nil, err
	}
	if resident != nil {
		link := models.ArtistSalon{
			ArtistID:       resident.ID,
			SalonID:        salon.ID,
			CommissionRate: decimal.Zero,
			IsActive:       true,
			StartedAt:      time.Now().UTC(),
		}
		if err := s.artists.SaveSalonLink(ctx, &link); err != nil {
			return nil, err
		}
		salon.Artists = append(salon.Artists, link)
	}

	flush(ctx, s.cache)
	log.Info().Str("salon_id", salon.ID).Str("slug", salon.Slug).Msg("salon created")
	return salon, nil
}

// Update edits a salon. Only its owner and admins may do so.
func (s *SalonService) Update(ctx context.Context, actor Actor, id string, in SalonInput) (*models.Salon, error) {
	salon, err := s.salons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageSalon(actor, salon) {
		return nil, apperror.New(apperror.CodeForbidden, "you cannot edit this salon")
	}
	if err := s.apply(ctx, salon, in); err != nil {
		return nil, err
	}
	if err := s.salons.Update(ctx, salon); err != nil {
		return nil, err
	}

	flush(ctx, s.cache)
	return salon, nil
}

func (s *SalonService) apply(ctx context.Context, salon *models.Salon, in SalonInput) error {
	if in.Name != nil {
		salon.Name = strings.TrimSpace(*in.Name)
	}
	if in.CitySlug != nil {
		if *in.CitySlug == "" {
			salon.CityID = nil
			salon.City = nil
		} else {
			city, err := s.cities.GetBySlug(ctx, *in.CitySlug)
			if err != nil {
				return err
			}
			salon.CityID = &city.ID
			salon.City = city
		}
	}
	if in.Address != nil {
		salon.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		salon.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		salon.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Website != nil {
		salon.Website = strings.TrimSpace(*in.Website)
	}
	if in.Description != nil {
		salon.Description = strings.TrimSpace(*in.Description)
	}
	if len(in.OpeningHours) > 0 {
		if !json.Valid(in.OpeningHours) {
			return apperror.New(apperror.CodeValidation, "opening_hours must be valid JSON")
		}
		salon.OpeningHours = datatypes.JSON(in.OpeningHours)
	}
	return nil
}
