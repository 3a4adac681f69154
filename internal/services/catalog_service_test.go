package services_test

import (
	"context"
	"testing"
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/models"
	"inkbook/internal/services"
	"inkbook/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateCity(t *testing.T) {
	ctx := context.Background()
	cities := new(MockCityRepository)
	svc := services.NewCatalogService(cities, new(MockTagRepository), nil)

	_, err := svc.CreateCity(ctx, services.Actor{Role: models.RoleArtist}, services.CityInput{Name: "Köln", Country: "de"})
	assert.True(t, apperror.IsForbidden(err))

	cities.On("SlugExists", ctx, "koln").Return(false, nil)
	cities.On("Create", ctx, mock.AnythingOfType("*models.City")).Return(nil).Once()

	city, err := svc.CreateCity(ctx, services.Actor{Role: models.RoleAdmin}, services.CityInput{Name: "Köln", Country: "de"})
	require.NoError(t, err)
	assert.Equal(t, "koln", city.Slug)
	assert.Equal(t, "DE", city.Country)
	cities.AssertExpectations(t)
}

func TestCatalogService_TagsAreCachedAndFlushedOnCreate(t *testing.T) {
	ctx := context.Background()
	tags := new(MockTagRepository)
	svc := services.NewCatalogService(new(MockCityRepository), tags, cache.NewMemoryCache(time.Minute, 10))

	tags.On("List", ctx, models.TagStyle).Return([]models.Tag{{Name: "Blackwork", Slug: "blackwork"}}, nil).Twice()

	_, err := svc.ListTags(ctx, models.TagStyle)
	require.NoError(t, err)
	_, err = svc.ListTags(ctx, models.TagStyle)
	require.NoError(t, err)

	tags.On("SlugExists", ctx, "fine-line").Return(false, nil)
	tags.On("Create", ctx, mock.AnythingOfType("*models.Tag")).Return(nil)
	tag, err := svc.CreateTag(ctx, services.Actor{Role: models.RoleAdmin}, services.TagInput{Name: "Fine Line", Category: models.TagStyle})
	require.NoError(t, err)
	assert.Equal(t, "fine-line", tag.Slug)

	list, err := svc.ListTags(ctx, models.TagStyle)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	tags.AssertExpectations(t)

	_, err = svc.ListTags(ctx, "colour")
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}
