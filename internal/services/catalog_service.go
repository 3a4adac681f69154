package services

import (
	"context"
	"fmt"
	"strings"

	"inkbook/internal/cache"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"
)

// CatalogService handles the reference data: cities and tags.
type CatalogService struct {
	cities repositories.CityRepository
	tags   repositories.TagRepository
	cache  cache.QueryCache
}

func NewCatalogService(cities repositories.CityRepository, tags repositories.TagRepository, queryCache cache.QueryCache) *CatalogService {
	return &CatalogService{cities: cities, tags: tags, cache: queryCache}
}

type CityInput struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Region    string  `json:"region" validate:"omitempty,max=100"`
	Country   string  `json:"country" validate:"required,len=2,alpha"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

type TagInput struct {
	Name     string             `json:"name" validate:"required,min=2,max=60"`
	Category models.TagCategory `json:"category" validate:"required,oneof=style subject technique"`
}

func (s *CatalogService) ListCities(ctx context.Context, country string) ([]models.City, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	return cache.Remember(ctx, s.cache, cache.Key("cities.list", country), func() ([]models.City, error) {
		return s.cities.List(ctx, country)
	})
}

func (s *CatalogService) ListTags(ctx context.Context, category models.TagCategory) ([]models.Tag, error) {
	if category != "" && !category.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "unknown tag category %q", category)
	}
	return cache.Remember(ctx, s.cache, cache.Key("tags.list", string(category)), func() ([]models.Tag, error) {
		return s.tags.List(ctx, category)
	})
}

// CreateCity adds a city. Admin only.
func (s *CatalogService) CreateCity(ctx context.Context, actor Actor, in CityInput) (*models.City, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	city := &models.City{
		Name:      strings.TrimSpace(in.Name),
		Region:    strings.TrimSpace(in.Region),
		Country:   strings.ToUpper(in.Country),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	slug, err := uniqueSlug(ctx, city.Name, s.cities.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate city slug: %w", err)
	}
	city.Slug = slug
	if err := s.cities.Create(ctx, city); err != nil {
		return nil, err
	}
	flush(ctx, s.cache)
	return city, nil
}

// CreateTag adds a tag. Admin only.
func (s *CatalogService) CreateTag(ctx context.Context, actor Actor, in TagInput) (*models.Tag, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "unknown tag category %q", in.Category)
	}
	tag := &models.Tag{Name: strings.TrimSpace(in.Name), Category: in.Category}
	slug, err := uniqueSlug(ctx, tag.Name, s.tags.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tag slug: %w", err)
	}
	tag.Slug = slug
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	flush(ctx, s.cache)
	return tag, nil
}
