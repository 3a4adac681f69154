package services

import (
	"context"

	"inkbook/internal/cache"
	"inkbook/internal/models"
	"inkbook/pkg/apperror"
	"inkbook/pkg/rabbitmq"
	"inkbook/pkg/slug"

	"github.com/rs/zerolog/log"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID   string
	Username string
	Role     models.Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperror.New(apperror.CodeForbidden, "admin role required")
	}
	return nil
}

// canManageArtist reports whether actor may edit artist's profile and content.
func canManageArtist(actor Actor, artist *models.Artist) bool {
	return actor.IsAdmin() || (actor.UserID != "" && artist.UserID == actor.UserID)
}

func canManageSalon(actor Actor, salon *models.Salon) bool {
	return actor.IsAdmin() || salon.OwnedBy(actor.UserID)
}

// EventPublisher sends inquiry events to the broker. A nil publisher disables events.
type EventPublisher interface {
	PublishInquiryEvent(event rabbitmq.InquiryEvent) error
}

// uniqueSlug derives a slug from name that exists reports as free.
func uniqueSlug(ctx context.Context, name string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	return slug.Unique(slug.Make(name), func(candidate string) (bool, error) {
		return exists(ctx, candidate)
	})
}

// listResult is the cached form of a paginated query.
type listResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// rememberList memoizes a paginated list query under key.
func rememberList[T any](ctx context.Context, c cache.QueryCache, key string, load func() ([]T, int64, error)) ([]T, int64, error) {
	res, err := cache.Remember(ctx, c, key, func() (listResult[T], error) {
		items, total, err := load()
		return listResult[T]{Items: items, Total: total}, err
	})
	return res.Items, res.Total, err
}

// flush clears the query cache after a catalog write. Failures only cost freshness.
func flush(ctx context.Context, c cache.QueryCache) {
	if c == nil {
		return
	}
	if err := c.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("query cache flush failed")
	}
}
