package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"inkbook/internal/metrics"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"
	"inkbook/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InquiryService handles contact inquiries from clients to artists.
type InquiryService struct {
	inquiries repositories.InquiryRepository
	artists   repositories.ArtistRepository
	events    EventPublisher
	now       func() time.Time
}

// NewInquiryService creates a new InquiryService. events may be nil.
func NewInquiryService(inquiries repositories.InquiryRepository, artists repositories.ArtistRepository, events EventPublisher) *InquiryService {
	return &InquiryService{
		inquiries: inquiries,
		artists:   artists,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInquiryInput is the public contact form.
type SubmitInquiryInput struct {
	ArtistID        string                 `json:"artist_id" validate:"required,uuid"`
	ClientName      string                 `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail     string                 `json:"client_email" validate:"required,email,max=255"`
	ClientPhone     string                 `json:"client_phone" validate:"omitempty,max=30"`
	Subject         string                 `json:"subject" validate:"omitempty,max=200"`
	Message         string                 `json:"message" validate:"required,min=10,max=5000"`
	ProjectType     models.ProjectType     `json:"project_type" validate:"required,oneof=consultation small medium large sleeve cover_up touch_up custom_design other"`
	BudgetMin       *decimal.Decimal       `json:"budget_min"`
	BudgetMax       *decimal.Decimal       `json:"budget_max"`
	PreferredDate   *time.Time             `json:"preferred_date"`
	BodyPlacement   string                 `json:"body_placement" validate:"omitempty,max=50"`
	Size            string                 `json:"size" validate:"omitempty,max=20"`
	ReferenceImages []string               `json:"reference_images" validate:"max=5,dive,url"`
	Metadata        map[string]interface{} `json:"metadata"`

	// Filled in by the transport layer.
	UserID    string `json:"-"`
	Source    string `json:"-"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// InquiryStats summarizes an inbox.
type InquiryStats struct {
	Total                  int64                          `json:"total"`
	Unanswered             int64                          `json:"unanswered"`
	ByStatus               map[models.InquiryStatus]int64 `json:"by_status"`
	AverageResponseMinutes float64                        `json:"average_response_minutes"`
}

// Submit stores a new inquiry with its priority derived from the project type.
func (s *InquiryService) Submit(ctx context.Context, in SubmitInquiryInput) (*models.ContactInquiry, error) {
	artist, err := s.artists.GetByID(ctx, in.ArtistID)
	if err != nil {
		return nil, err
	}
	if !artist.AcceptingBookings {
		return nil, apperror.New(apperror.CodeInvalidState, "%s is not accepting bookings", artist.DisplayName())
	}

	if in.BudgetMin != nil && in.BudgetMin.IsNegative() {
		return nil, apperror.New(apperror.CodeValidation, "budget_min cannot be negative")
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && in.BudgetMax.LessThan(*in.BudgetMin) {
		return nil, apperror.New(apperror.CodeValidation, "budget_max must not be below budget_min")
	}
	now := s.now()
	if in.PreferredDate != nil && in.PreferredDate.Before(now.Truncate(24*time.Hour)) {
		return nil, apperror.New(apperror.CodeValidation, "preferred_date cannot be in the past")
	}

	inquiry := &models.ContactInquiry{
		ArtistID:      artist.ID,
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientEmail:   strings.ToLower(strings.TrimSpace(in.ClientEmail)),
		Subject:       strings.TrimSpace(in.Subject),
		Message:       strings.TrimSpace(in.Message),
		ProjectType:   in.ProjectType,
		PreferredDate: in.PreferredDate,
		BodyPlacement: strings.TrimSpace(in.BodyPlacement),
		Size:          strings.TrimSpace(in.Size),
		Status:        models.InquiryPending,
		Source:        in.Source,
		IPAddress:     in.IPAddress,
		UserAgent:     truncate(in.UserAgent, 255),
	}
	if inquiry.Subject == "" {
		inquiry.Subject = fmt.Sprintf("New %s inquiry", strings.ReplaceAll(string(in.ProjectType), "_", " "))
	}
	if inquiry.Source == "" {
		inquiry.Source = "website"
	}
	if phone := strings.TrimSpace(in.ClientPhone); phone != "" {
		inquiry.ClientPhone = &phone
	}
	if in.UserID != "" {
		userID := in.UserID
		inquiry.UserID = &userID
	}
	if in.BudgetMin != nil {
		inquiry.BudgetMin = decimal.NewNullDecimal(*in.BudgetMin)
	}
	if in.BudgetMax != nil {
		inquiry.BudgetMax = decimal.NewNullDecimal(*in.BudgetMax)
	}
	if len(in.Metadata) > 0 {
		inquiry.Metadata = datatypes.JSONMap(in.Metadata)
	}
	if len(in.ReferenceImages) > 0 {
		inquiry.ReferenceImages = datatypes.NewJSONSlice(in.ReferenceImages)
	}
	inquiry.AssignPriority()

	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to save inquiry: %w", err)
	}

	metrics.RecordInquirySubmitted(string(inquiry.ProjectType))
	log.Info().
		Str("inquiry_id", inquiry.ID).
		Str("artist_id", inquiry.ArtistID).
		Int("priority", inquiry.Priority).
		Msg("inquiry submitted")

	s.publish(rabbitmq.EventInquiryCreated, inquiry)
	return inquiry, nil
}

// Get returns one inquiry to its artist or an admin.
func (s *InquiryService) Get(ctx context.Context, actor Actor, id string) (*models.ContactInquiry, error) {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope != "" && inquiry.ArtistID != scope {
		// Hide existence from other artists.
		return nil, apperror.NotFound("inquiry")
	}
	return inquiry, nil
}

// List returns the actor's inbox: an artist's own inquiries, or all of them for admins.
func (s *InquiryService) List(ctx context.Context, actor Actor, filter repositories.InquiryFilter) ([]models.ContactInquiry, int64, error) {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if scope != "" {
		filter.ArtistID = scope
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.New(apperror.CodeValidation, "unknown inquiry status %q", filter.Status)
	}
	filter.Page = filter.Page.Normalize()
	return s.inquiries.List(ctx, filter)
}

// MarkAsRead stamps the read time and starts handling a pending inquiry.
func (s *InquiryService) MarkAsRead(ctx context.Context, actor Actor, id string) (*models.ContactInquiry, error) {
	return s.mutate(ctx, actor, id, func(inquiry *models.ContactInquiry) error {
		return inquiry.MarkAsRead(s.now())
	})
}

// Reply records the artist's answer and notifies the client.
func (s *InquiryService) Reply(ctx context.Context, actor Actor, id, message string) (*models.ContactInquiry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.New(apperror.CodeValidation, "reply message is required")
	}
	inquiry, err := s.mutate(ctx, actor, id, func(inquiry *models.ContactInquiry) error {
		return inquiry.RecordReply(message, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.publish(rabbitmq.EventInquiryReplied, inquiry)
	return inquiry, nil
}

// UpdateStatus moves an inquiry to status through the allowed transitions.
func (s *InquiryService) UpdateStatus(ctx context.Context, actor Actor, id string, status models.InquiryStatus) (*models.ContactInquiry, error) {
	if !status.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "unknown inquiry status %q", status)
	}
	return s.mutate(ctx, actor, id, func(inquiry *models.ContactInquiry) error {
		return inquiry.ApplyStatus(status, s.now())
	})
}

// SetPriority overrides the computed priority. Admin only; the value is clamped to [1,10].
func (s *InquiryService) SetPriority(ctx context.Context, actor Actor, id string, priority int) (*models.ContactInquiry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(inquiry *models.ContactInquiry) error {
		inquiry.SetPriority(priority)
		return nil
	})
}

// Stats counts the actor's inquiries by status and averages the response time.
func (s *InquiryService) Stats(ctx context.Context, actor Actor) (*InquiryStats, error) {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.inquiries.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	avg, err := s.inquiries.AverageResponseMinutes(ctx, scope)
	if err != nil {
		return nil, err
	}

	stats := &InquiryStats{
		ByStatus:               make(map[models.InquiryStatus]int64),
		AverageResponseMinutes: avg,
	}
	for _, st := range []models.InquiryStatus{models.InquiryPending, models.InquiryInProgress, models.InquiryReplied, models.InquiryClosed, models.InquirySpam} {
		stats.ByStatus[st] = counts[st]
		stats.Total += counts[st]
	}
	stats.Unanswered = counts[models.InquiryPending] + counts[models.InquiryInProgress]
	return stats, nil
}

// scopeFor returns the artist ID the actor is limited to, or "" for admins.
// The profile is resolved by user, not by token role, so a client promoted
// by creating a profile keeps access with the token they already hold.
func (s *InquiryService) scopeFor(ctx context.Context, actor Actor) (string, error) {
	if actor.IsAdmin() {
		return "", nil
	}
	artist, err := s.artists.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.New(apperror.CodeForbidden, "only artists can read inquiries")
		}
		return "", err
	}
	return artist.ID, nil
}

func (s *InquiryService) mutate(ctx context.Context, actor Actor, id string, change func(*models.ContactInquiry) error) (*models.ContactInquiry, error) {
	inquiry, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := change(inquiry); err != nil {
		return nil, err
	}
	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to update inquiry %s: %w", id, err)
	}
	return inquiry, nil
}

// publish is fire-and-forget: a broker outage must not fail the request.
func (s *InquiryService) publish(eventType string, inquiry *models.ContactInquiry) {
	if s.events == nil {
		return
	}
	event := rabbitmq.InquiryEvent{
		Type:       eventType,
		InquiryID:  inquiry.ID,
		ArtistID:   inquiry.ArtistID,
		ClientName: inquiry.ClientName,
		Email:      inquiry.ClientEmail,
		Subject:    inquiry.Subject,
		Priority:   inquiry.Priority,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishInquiryEvent(event); err != nil {
		log.Error().Err(err).Str("inquiry_id", inquiry.ID).Str("type", eventType).Msg("failed to publish inquiry event")
	}
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
