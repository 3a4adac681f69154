package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/metrics"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"
	"inkbook/pkg/storage"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// TattooService handles portfolio pieces and their images.
type TattooService struct {
	tattoos repositories.TattooRepository
	artists repositories.ArtistRepository
	tags    repositories.TagRepository
	store   storage.ObjectStore
	images  *storage.ImageProcessor
	cache   cache.QueryCache
	now     func() time.Time
}

// NewTattooService creates a new TattooService. queryCache may be nil.
func NewTattooService(
	tattoos repositories.TattooRepository,
	artists repositories.ArtistRepository,
	tags repositories.TagRepository,
	store storage.ObjectStore,
	images *storage.ImageProcessor,
	queryCache cache.QueryCache,
) *TattooService {
	if images == nil {
		images = storage.NewImageProcessor()
	}
	return &TattooService{
		tattoos: tattoos,
		artists: artists,
		tags:    tags,
		store:   store,
		images:  images,
		cache:   queryCache,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// TattooInput creates a portfolio piece.
type TattooInput struct {
	Title         string   `json:"title" validate:"required,min=2,max=150"`
	Description   string   `json:"description" validate:"max=5000"`
	BodyPlacement string   `json:"body_placement" validate:"omitempty,max=50"`
	Size          string   `json:"size" validate:"omitempty,oneof=small medium large sleeve"`
	IsColor       bool     `json:"is_color"`
	TagSlugs      []string `json:"tags" validate:"omitempty,max=15,dive,required"`
	// ArtistID lets an admin create on behalf of an artist.
	ArtistID string `json:"artist_id" validate:"omitempty,uuid"`
}

// List returns published tattoos. Results are memoized per filter.
func (s *TattooService) List(ctx context.Context, filter repositories.TattooFilter) ([]models.Tattoo, int64, error) {
	filter.Status = models.TattooPublished
	filter.Page = filter.Page.Normalize()
	return rememberList(ctx, s.cache, cache.Key("tattoos.list", filter), func() ([]models.Tattoo, int64, error) {
		return s.tattoos.List(ctx, filter)
	})
}

// ListByArtist returns an artist's portfolio. The owner and admins may filter
// by any status; everyone else sees published pieces only.
func (s *TattooService) ListByArtist(ctx context.Context, actor *Actor, artistSlug string, filter repositories.TattooFilter) ([]models.Tattoo, int64, error) {
	artist, err := s.artists.GetBySlug(ctx, artistSlug)
	if err != nil {
		return nil, 0, err
	}
	filter.ArtistID = artist.ID
	if actor == nil || !canManageArtist(*actor, artist) {
		return s.List(ctx, filter)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.New(apperror.CodeValidation, "unknown tattoo status %q", filter.Status)
	}
	filter.Page = filter.Page.Normalize()
	return s.tattoos.List(ctx, filter)
}

// Get returns a tattoo. Unpublished pieces are visible to their artist and admins only.
// Public reads count a view.
func (s *TattooService) Get(ctx context.Context, actor *Actor, id string) (*models.Tattoo, error) {
	tattoo, err := s.tattoos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tattoo.IsPublished() {
		if actor == nil || tattoo.Artist == nil || !canManageArtist(*actor, tattoo.Artist) {
			return nil, apperror.NotFound("tattoo")
		}
		return tattoo, nil
	}

	counted, err := s.tattoos.IncrementCounter(ctx, id, repositories.CounterViews)
	if err != nil {
		log.Warn().Err(err).Str("tattoo_id", id).Msg("failed to count tattoo view")
		return tattoo, nil
	}
	metrics.RecordEngagement("view")
	tattoo.ViewCount = counted.ViewCount
	tattoo.EngagementScore = counted.EngagementScore
	return tattoo, nil
}

// Create adds a draft to the actor's portfolio.
func (s *TattooService) Create(ctx context.Context, actor Actor, in TattooInput) (*models.Tattoo, error) {
	artist, err := s.ownArtist(ctx, actor, in.ArtistID)
	if err != nil {
		return nil, err
	}

	tattoo := &models.Tattoo{
		ArtistID:      artist.ID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		BodyPlacement: strings.TrimSpace(in.BodyPlacement),
		Size:          in.Size,
		IsColor:       in.IsColor,
		Status:        models.TattooDraft,
	}
	if len(in.TagSlugs) > 0 {
		tags, err := s.tags.GetBySlugs(ctx, in.TagSlugs)
		if err != nil {
			return nil, err
		}
		if len(tags) != len(uniqueStrings(in.TagSlugs)) {
			return nil, apperror.New(apperror.CodeValidation, "unknown tag in %v", in.TagSlugs)
		}
		tattoo.Tags = tags
	}

	slug, err := uniqueSlug(ctx, artist.Slug+" "+tattoo.Title, s.tattoos.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tattoo slug: %w", err)
	}
	tattoo.Slug = slug

	if err := s.tattoos.Create(ctx, tattoo); err != nil {
		return nil, err
	}
	// Drafts are not listed publicly, so the cache stays valid.
	return tattoo, nil
}

// UploadImage validates an upload, renders its variants and stores them.
// A previous image of the tattoo is replaced.
func (s *TattooService) UploadImage(ctx context.Context, actor Actor, id string, data []byte) (*models.Tattoo, error) {
	tattoo, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if tattoo.Status == models.TattooArchived {
		return nil, apperror.New(apperror.CodeInvalidState, "archived tattoos cannot change their image")
	}

	info, err := s.images.ValidateImage(data)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeValidation, err, "invalid image")
	}
	variants, err := s.images.ProcessImage(data)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeValidation, err, "invalid image")
	}

	prefix := imagePrefix(tattoo.ID)
	if tattoo.ImageKey != "" {
		if err := s.store.DeleteByPrefix(ctx, prefix); err != nil {
			return nil, fmt.Errorf("failed to remove previous image: %w", err)
		}
	}

	ext, contentType := "jpg", "image/jpeg"
	if info.Format == "png" {
		ext, contentType = "png", "image/png"
	}
	originalKey := fmt.Sprintf("%soriginal.%s", prefix, ext)
	originalURL, err := s.store.Upload(ctx, originalKey, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	urls := datatypes.JSONMap{"original": originalURL}
	for name, body := range variants {
		url, err := s.store.Upload(ctx, fmt.Sprintf("%s%s.jpg", prefix, name), body, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s variant: %w", name, err)
		}
		urls[name] = url
	}

	tattoo.ImageKey = originalKey
	tattoo.ImageVariants = urls
	tattoo.Width = info.Width
	tattoo.Height = info.Height
	if err := s.tattoos.Update(ctx, tattoo); err != nil {
		return nil, err
	}

	if tattoo.IsPublished() {
		flush(ctx, s.cache)
	}
	log.Info().Str("tattoo_id", tattoo.ID).Int("variants", len(variants)).Msg("tattoo image stored")
	return tattoo, nil
}

// SubmitForReview queues a draft for admin review.
func (s *TattooService) SubmitForReview(ctx context.Context, actor Actor, id string) (*models.Tattoo, error) {
	tattoo, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := tattoo.SubmitForReview(); err != nil {
		return nil, err
	}
	if err := s.tattoos.Update(ctx, tattoo); err != nil {
		return nil, err
	}
	return tattoo, nil
}

// Publish makes a tattoo public. Admin only.
func (s *TattooService) Publish(ctx context.Context, actor Actor, id string) (*models.Tattoo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tattoo, err := s.tattoos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tattoo.Publish(s.now()); err != nil {
		return nil, err
	}
	if err := s.tattoos.Update(ctx, tattoo); err != nil {
		return nil, err
	}
	flush(ctx, s.cache)
	return tattoo, nil
}

// Archive hides a tattoo from listings.
func (s *TattooService) Archive(ctx context.Context, actor Actor, id string) (*models.Tattoo, error) {
	tattoo, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	wasPublic := tattoo.IsPublished()
	tattoo.Archive()
	if err := s.tattoos.Update(ctx, tattoo); err != nil {
		return nil, err
	}
	if wasPublic {
		flush(ctx, s.cache)
	}
	return tattoo, nil
}

// Delete removes a tattoo and its stored images.
func (s *TattooService) Delete(ctx context.Context, actor Actor, id string) error {
	tattoo, err := s.manageable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.tattoos.Delete(ctx, tattoo.ID); err != nil {
		return err
	}
	if tattoo.ImageKey != "" {
		if err := s.store.DeleteByPrefix(ctx, imagePrefix(tattoo.ID)); err != nil {
			log.Warn().Err(err).Str("tattoo_id", tattoo.ID).Msg("failed to remove tattoo images")
		}
	}
	flush(ctx, s.cache)
	return nil
}

// Like counts a like on a published tattoo.
func (s *TattooService) Like(ctx context.Context, id string) (*models.Tattoo, error) {
	return s.engage(ctx, id, repositories.CounterLikes, "like")
}

// Share counts a share on a published tattoo.
func (s *TattooService) Share(ctx context.Context, id string) (*models.Tattoo, error) {
	return s.engage(ctx, id, repositories.CounterShares, "share")
}

// engage bumps a counter. Counters do not flush the cache: popularity
// ordering may lag by one TTL.
func (s *TattooService) engage(ctx context.Context, id, counter, kind string) (*models.Tattoo, error) {
	tattoo, err := s.tattoos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tattoo.IsPublished() {
		return nil, apperror.NotFound("tattoo")
	}
	updated, err := s.tattoos.IncrementCounter(ctx, id, counter)
	if err != nil {
		return nil, err
	}
	metrics.RecordEngagement(kind)
	return updated, nil
}

func (s *TattooService) manageable(ctx context.Context, actor Actor, id string) (*models.Tattoo, error) {
	tattoo, err := s.tattoos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return tattoo, nil
	}
	artist := tattoo.Artist
	if artist == nil {
		if artist, err = s.artists.GetByID(ctx, tattoo.ArtistID); err != nil {
			return nil, err
		}
	}
	if !canManageArtist(actor, artist) {
		return nil, apperror.New(apperror.CodeForbidden, "you cannot edit this tattoo")
	}
	return tattoo, nil
}

// ownArtist resolves the artist a new tattoo belongs to.
func (s *TattooService) ownArtist(ctx context.Context, actor Actor, artistID string) (*models.Artist, error) {
	if actor.IsAdmin() && artistID != "" {
		return s.artists.GetByID(ctx, artistID)
	}
	artist, err := s.artists.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.New(apperror.CodeForbidden, "create an artist profile first")
		}
		return nil, err
	}
	return artist, nil
}

func imagePrefix(tattooID string) string {
	return "tattoos/" + tattooID + "/"
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
