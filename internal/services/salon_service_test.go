package services_test

import (
	"context"
	"testing"

	"inkbook/internal/models"
	"inkbook/internal/services"
	"inkbook/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSalonService_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	salons := new(MockSalonRepository)
	artists := new(MockArtistRepository)
	svc := services.NewSalonService(salons, artists, new(MockCityRepository), nil)

	resident := &models.Artist{UserID: "owner"}
	resident.ID = "artist-1"
	artists.On("GetByUserID", ctx, "owner").Return(resident, nil)
	artists.On("GetByUserID", ctx, "c").Return(nil, apperror.NotFound("artist"))

	name := "Black Lodge Tattoo"
	_, err := svc.Create(ctx, services.Actor{UserID: "c", Role: models.RoleClient}, services.SalonInput{Name: &name})
	assert.True(t, apperror.IsForbidden(err))

	salons.On("SlugExists", ctx, "black-lodge-tattoo").Return(false, nil)
	salons.On("Create", ctx, mock.AnythingOfType("*models.Salon")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Salon).ID = "salon-1"
	}).Return(nil).Once()
	artists.On("SaveSalonLink", ctx, mock.MatchedBy(func(link *models.ArtistSalon) bool {
		return link.ArtistID == "artist-1" && link.SalonID == "salon-1" && link.IsActive
	})).Return(nil).Once()

	email := " Hi@BlackLodge.example "
	salon, err := svc.Create(ctx, services.Actor{UserID: "owner", Role: models.RoleArtist}, services.SalonInput{
		Name:         &name,
		Email:        &email,
		OpeningHours: []byte(`{"mon":"10-18"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "black-lodge-tattoo", salon.Slug)
	assert.Equal(t, "hi@blacklodge.example", salon.Email)
	assert.True(t, salon.OwnedBy("owner"))
	assert.Equal(t, 1, salon.ActiveArtistCount(), "the creating artist works at the salon")

	salon.Artists = append(salon.Artists, models.ArtistSalon{ArtistID: "artist-2", SalonID: "salon-1", IsActive: true})
	salons.On("GetByID", ctx, "salon-1").Return(salon, nil)
	salons.On("Update", ctx, salon).Return(nil)

	desc := "Walk-ins welcome"
	updated, err := svc.Update(ctx, services.Actor{UserID: "owner", Role: models.RoleArtist}, "salon-1", services.SalonInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Walk-ins welcome", updated.Description)

	_, err = svc.Update(ctx, services.Actor{UserID: "resident", Role: models.RoleArtist}, "salon-1", services.SalonInput{Description: &desc})
	assert.True(t, apperror.IsForbidden(err), "working at a salon does not grant edit rights")

	_, err = svc.Update(ctx, services.Actor{Role: models.RoleAdmin}, "salon-1", services.SalonInput{Description: &desc})
	assert.NoError(t, err)
	artists.AssertExpectations(t)
}

func TestSalonService_AdminCreatesWithoutLink(t *testing.T) {
	ctx := context.Background()
	salons := new(MockSalonRepository)
	artists := new(MockArtistRepository)
	svc := services.NewSalonService(salons, artists, new(MockCityRepository), nil)

	salons.On("SlugExists", ctx, "north-star").Return(false, nil)
	salons.On("Create", ctx, mock.AnythingOfType("*models.Salon")).Return(nil).Once()

	name := "North Star"
	salon, err := svc.Create(ctx, services.Actor{UserID: "root", Role: models.RoleAdmin}, services.SalonInput{Name: &name})
	require.NoError(t, err)
	assert.True(t, salon.OwnedBy("root"))
	assert.Empty(t, salon.Artists)
	artists.AssertNotCalled(t, "SaveSalonLink", mock.Anything, mock.Anything)
}
