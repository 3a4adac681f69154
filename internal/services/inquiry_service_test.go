package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/internal/services"
	"inkbook/pkg/apperror"
	"inkbook/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type inquiryFixture struct {
	service   *services.InquiryService
	repo      *repositories.MockInquiryRepository
	artists   *MockArtistRepository
	publisher *MockPublisher
	artist    *models.Artist
	owner     services.Actor
	admin     services.Actor
}

func newInquiryFixture(t *testing.T) *inquiryFixture {
	t.Helper()
	artist := &models.Artist{UserID: "user-artist", StageName: "Mira Ink", Slug: "mira-ink", AcceptingBookings: true}
	artist.ID = "6f1c2f3a-8d9e-4b7a-9c1d-2e3f4a5b6c7d"

	artists := new(MockArtistRepository)
	artists.On("GetByID", mock.Anything, artist.ID).Return(artist, nil).Maybe()
	artists.On("GetByUserID", mock.Anything, "user-artist").Return(artist, nil).Maybe()
	artists.On("GetByUserID", mock.Anything, "user-other").Return(&models.Artist{Base: models.Base{ID: "other-artist"}, UserID: "user-other"}, nil).Maybe()
	artists.On("GetByUserID", mock.Anything, "client").Return(nil, apperror.NotFound("artist")).Maybe()
	artists.On("GetByUserID", mock.Anything, "promoted").Return(&models.Artist{Base: models.Base{ID: "promoted-artist"}, UserID: "promoted"}, nil).Maybe()

	publisher := new(MockPublisher)
	repo := repositories.NewMockInquiryRepository()

	return &inquiryFixture{
		service:   services.NewInquiryService(repo, artists, publisher),
		repo:      repo,
		artists:   artists,
		publisher: publisher,
		artist:    artist,
		owner:     services.Actor{UserID: "user-artist", Role: models.RoleArtist},
		admin:     services.Actor{UserID: "user-admin", Role: models.RoleAdmin},
	}
}

func (f *inquiryFixture) submit(t *testing.T, projectType models.ProjectType) *models.ContactInquiry {
	t.Helper()
	f.publisher.On("PublishInquiryEvent", mock.MatchedBy(func(e rabbitmq.InquiryEvent) bool {
		return e.Type == rabbitmq.EventInquiryCreated
	})).Return(nil).Once()

	inquiry, err := f.service.Submit(context.Background(), services.SubmitInquiryInput{
		ArtistID:    f.artist.ID,
		ClientName:  "  Jo Client ",
		ClientEmail: "Jo@Example.COM",
		ClientPhone: " +49 30 1234 ",
		Message:     "  I would like a fine line piece on my forearm.  ",
		ProjectType: projectType,
		IPAddress:   "10.0.0.1",
	})
	require.NoError(t, err)
	return inquiry
}

func TestInquiryService_Submit(t *testing.T) {
	f := newInquiryFixture(t)
	inquiry := f.submit(t, models.ProjectSleeve)

	assert.Equal(t, models.InquiryPending, inquiry.Status)
	assert.Equal(t, 8, inquiry.Priority)
	assert.Equal(t, "Jo Client", inquiry.ClientName)
	assert.Equal(t, "jo@example.com", inquiry.ClientEmail)
	require.NotNil(t, inquiry.ClientPhone)
	assert.Equal(t, "+49 30 1234", *inquiry.ClientPhone)
	assert.Equal(t, "I would like a fine line piece on my forearm.", inquiry.Message)
	assert.Equal(t, "New sleeve inquiry", inquiry.Subject)
	assert.Equal(t, "website", inquiry.Source)

	stored, err := f.repo.GetByID(context.Background(), inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, inquiry.Priority, stored.Priority)
	f.publisher.AssertExpectations(t)
}

func TestInquiryService_SubmitPublisherFailureIsNotFatal(t *testing.T) {
	f := newInquiryFixture(t)
	f.publisher.On("PublishInquiryEvent", mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.service.Submit(context.Background(), services.SubmitInquiryInput{
		ArtistID: f.artist.ID, ClientName: "Jo", ClientEmail: "jo@example.com",
		Message: "Hello there, a question.", ProjectType: models.ProjectOther,
	})
	assert.NoError(t, err)
}

func TestInquiryService_SubmitRejections(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	base := services.SubmitInquiryInput{
		ArtistID: f.artist.ID, ClientName: "Jo", ClientEmail: "jo@example.com",
		Message: "Hello there, a question.", ProjectType: models.ProjectSmall,
	}

	low, high := decimal.NewFromInt(300), decimal.NewFromInt(100)
	in := base
	in.BudgetMin, in.BudgetMax = &low, &high
	_, err := f.service.Submit(ctx, in)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	past := time.Now().AddDate(0, 0, -3)
	in = base
	in.PreferredDate = &past
	_, err = f.service.Submit(ctx, in)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	f.artist.AcceptingBookings = false
	_, err = f.service.Submit(ctx, base)
	assert.True(t, apperror.IsInvalidState(err))

	f.artists.On("GetByID", mock.Anything, "missing").Return(nil, apperror.NotFound("artist"))
	in = base
	in.ArtistID = "missing"
	_, err = f.service.Submit(ctx, in)
	assert.True(t, apperror.IsNotFound(err))
}

func TestInquiryService_AccessControl(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	inquiry := f.submit(t, models.ProjectSmall)

	got, err := f.service.Get(ctx, f.owner, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, inquiry.ID, got.ID)

	_, err = f.service.Get(ctx, f.admin, inquiry.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(ctx, services.Actor{UserID: "user-other", Role: models.RoleArtist}, inquiry.ID)
	assert.True(t, apperror.IsNotFound(err), "other artists must not learn the inquiry exists")

	_, err = f.service.Get(ctx, services.Actor{UserID: "client", Role: models.RoleClient}, inquiry.ID)
	assert.True(t, apperror.IsForbidden(err))

	items, total, err := f.service.List(ctx, services.Actor{UserID: "user-other", Role: models.RoleArtist}, repositories.InquiryFilter{ArtistID: f.artist.ID})
	require.NoError(t, err)
	assert.Zero(t, total, "the artist filter is overridden by the caller's scope")
	assert.Empty(t, items)

	items, total, err = f.service.List(ctx, f.owner, repositories.InquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestInquiryService_ProfileOwnerWithClientRole(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	f.submit(t, models.ProjectSmall)
	promoted := services.Actor{UserID: "promoted", Role: models.RoleClient}

	items, total, err := f.service.List(ctx, promoted, repositories.InquiryFilter{})
	require.NoError(t, err, "inbox access follows the artist profile, not the token role")
	assert.Zero(t, total)
	assert.Empty(t, items)

	stats, err := f.service.Stats(ctx, promoted)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	_, err = f.service.Stats(ctx, services.Actor{UserID: "client", Role: models.RoleClient})
	assert.True(t, apperror.IsForbidden(err))
}

func TestInquiryService_SubmitTruncatesUserAgentOnRuneBoundary(t *testing.T) {
	f := newInquiryFixture(t)
	f.publisher.On("PublishInquiryEvent", mock.Anything).Return(nil).Once()
	agent := strings.Repeat("é", 200)

	inquiry, err := f.service.Submit(context.Background(), services.SubmitInquiryInput{
		ArtistID: f.artist.ID, ClientName: "Jo", ClientEmail: "jo@example.com",
		Message: "Hello there, a question.", ProjectType: models.ProjectOther,
		UserAgent: agent,
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(inquiry.UserAgent))
	assert.Len(t, inquiry.UserAgent, 254)
	assert.True(t, strings.HasPrefix(agent, inquiry.UserAgent))
}

func TestInquiryService_Lifecycle(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	inquiry := f.submit(t, models.ProjectMedium)

	read, err := f.service.MarkAsRead(ctx, f.owner, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryInProgress, read.Status)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	read, err = f.service.MarkAsRead(ctx, f.owner, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, firstRead, *read.ReadAt, "read_at is only set once")

	_, err = f.service.Reply(ctx, f.owner, inquiry.ID, "   ")
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	f.publisher.On("PublishInquiryEvent", mock.MatchedBy(func(e rabbitmq.InquiryEvent) bool {
		return e.Type == rabbitmq.EventInquiryReplied && e.InquiryID == inquiry.ID
	})).Return(nil).Once()
	replied, err := f.service.Reply(ctx, f.owner, inquiry.ID, "Happy to help, let's book a consult.")
	require.NoError(t, err)
	assert.Equal(t, models.InquiryReplied, replied.Status)
	require.NotNil(t, replied.ResponseTimeMinutes)
	assert.GreaterOrEqual(t, *replied.ResponseTimeMinutes, 0)

	closed, err := f.service.UpdateStatus(ctx, f.owner, inquiry.ID, models.InquiryClosed)
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)

	reopened, err := f.service.UpdateStatus(ctx, f.owner, inquiry.ID, models.InquiryInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)

	_, err = f.service.UpdateStatus(ctx, f.owner, inquiry.ID, models.InquirySpam)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(ctx, f.owner, inquiry.ID, models.InquiryInProgress)
	assert.True(t, apperror.IsInvalidState(err), "spam is terminal")

	_, err = f.service.UpdateStatus(ctx, f.owner, inquiry.ID, "bogus")
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	f.publisher.AssertExpectations(t)
}

func TestInquiryService_SetPriority(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	inquiry := f.submit(t, models.ProjectTouchUp)
	assert.Equal(t, 2, inquiry.Priority)

	_, err := f.service.SetPriority(ctx, f.owner, inquiry.ID, 9)
	assert.True(t, apperror.IsForbidden(err))

	updated, err := f.service.SetPriority(ctx, f.admin, inquiry.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, models.MaxPriority, updated.Priority)

	updated, err = f.service.SetPriority(ctx, f.admin, inquiry.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, models.MinPriority, updated.Priority)
}

func TestInquiryService_Stats(t *testing.T) {
	f := newInquiryFixture(t)
	ctx := context.Background()
	first := f.submit(t, models.ProjectSmall)
	f.submit(t, models.ProjectLarge)

	f.publisher.On("PublishInquiryEvent", mock.Anything).Return(nil)
	_, err := f.service.Reply(ctx, f.owner, first.ID, "Sure, see you Monday.")
	require.NoError(t, err)

	stats, err := f.service.Stats(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.InquiryReplied])
	assert.Equal(t, int64(1), stats.ByStatus[models.InquiryPending])
	assert.Equal(t, int64(1), stats.Unanswered)
	assert.GreaterOrEqual(t, stats.AverageResponseMinutes, 0.0)
}
