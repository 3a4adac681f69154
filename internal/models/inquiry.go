package models

import (
	"time"

	"inkbook/pkg/apperror"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InquiryStatus is the handling state of a contact inquiry.
type InquiryStatus string

const (
	InquiryPending    InquiryStatus = "pending"
	InquiryInProgress InquiryStatus = "in_progress"
	InquiryReplied    InquiryStatus = "replied"
	InquiryClosed     InquiryStatus = "closed"
	InquirySpam       InquiryStatus = "spam"
)

// ProjectType is what the client wants done.
type ProjectType string

const (
	ProjectConsultation ProjectType = "consultation"
	ProjectSmall        ProjectType = "small"
	ProjectMedium       ProjectType = "medium"
	ProjectLarge        ProjectType = "large"
	ProjectSleeve       ProjectType = "sleeve"
	ProjectCoverUp      ProjectType = "cover_up"
	ProjectTouchUp      ProjectType = "touch_up"
	ProjectCustomDesign ProjectType = "custom_design"
	ProjectOther        ProjectType = "other"
)

const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

var projectPriorities = map[ProjectType]int{
	ProjectConsultation: 3,
	ProjectSmall:        4,
	ProjectMedium:       5,
	ProjectLarge:        7,
	ProjectSleeve:       8,
	ProjectCoverUp:      6,
	ProjectTouchUp:      2,
	ProjectCustomDesign: 6,
	ProjectOther:        3,
}

var inquiryTransitions = map[InquiryStatus][]InquiryStatus{
	InquiryPending:    {InquiryInProgress, InquiryReplied, InquiryClosed, InquirySpam},
	InquiryInProgress: {InquiryReplied, InquiryClosed, InquirySpam},
	InquiryReplied:    {InquiryInProgress, InquiryClosed, InquirySpam},
	InquiryClosed:     {InquiryInProgress},
	InquirySpam:       {},
}

// Valid reports whether s is a known inquiry status.
func (s InquiryStatus) Valid() bool {
	_, ok := inquiryTransitions[s]
	return ok
}

// CanTransitionTo reports whether an inquiry in s may move to next.
func (s InquiryStatus) CanTransitionTo(next InquiryStatus) bool {
	for _, allowed := range inquiryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known project type.
func (p ProjectType) Valid() bool {
	_, ok := projectPriorities[p]
	return ok
}

// PriorityFor looks up the default priority of a project type.
func PriorityFor(p ProjectType) int {
	if prio, ok := projectPriorities[p]; ok {
		return prio
	}
	return DefaultPriority
}

// ClampPriority forces p into [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// ContactInquiry is a message from a client to an artist.
type ContactInquiry struct {
	Base
	ArtistID            string                      `json:"artist_id" gorm:"type:varchar(36);not null;index"`
	Artist              *Artist                     `json:"artist,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	UserID              *string                     `json:"user_id,omitempty" gorm:"type:varchar(36);index"`
	ClientName          string                      `json:"client_name" gorm:"type:varchar(100);not null"`
	ClientEmail         string                      `json:"client_email" gorm:"type:varchar(255);not null;index"`
	ClientPhone         *string                     `json:"client_phone,omitempty" gorm:"type:varchar(30)"`
	Subject             string                      `json:"subject" gorm:"type:varchar(200)"`
	Message             string                      `json:"message" gorm:"type:text;not null"`
	ProjectType         ProjectType                 `json:"project_type" gorm:"type:varchar(20);not null"`
	BudgetMin           decimal.NullDecimal         `json:"budget_min" gorm:"type:decimal(10,2)"`
	BudgetMax           decimal.NullDecimal         `json:"budget_max" gorm:"type:decimal(10,2)"`
	PreferredDate       *time.Time                  `json:"preferred_date,omitempty"`
	BodyPlacement       string                      `json:"body_placement,omitempty" gorm:"type:varchar(50)"`
	Size                string                      `json:"size,omitempty" gorm:"type:varchar(20)"`
	Status              InquiryStatus               `json:"status" gorm:"type:varchar(20);default:pending;not null;index"`
	Priority            int                         `json:"priority" gorm:"not null;index"`
	ReadAt              *time.Time                  `json:"read_at,omitempty"`
	RepliedAt           *time.Time                  `json:"replied_at,omitempty"`
	ClosedAt            *time.Time                  `json:"closed_at,omitempty"`
	ResponseTimeMinutes *int                        `json:"response_time_minutes,omitempty"`
	ReplyMessage        string                      `json:"reply_message,omitempty" gorm:"type:text"`
	Source              string                      `json:"source,omitempty" gorm:"type:varchar(50)"`
	IPAddress           string                      `json:"-" gorm:"type:varchar(45)"`
	UserAgent           string                      `json:"-" gorm:"type:varchar(255)"`
	Metadata            datatypes.JSONMap           `json:"metadata,omitempty"`
	ReferenceImages     datatypes.JSONSlice[string] `json:"reference_images,omitempty"`
}

// TableName keeps the plural used by the public API docs.
func (ContactInquiry) TableName() string {
	return "contact_inquiries"
}

// AssignPriority sets the priority from the project type lookup table.
func (c *ContactInquiry) AssignPriority() {
	c.Priority = ClampPriority(PriorityFor(c.ProjectType))
}

// SetPriority overrides the priority, clamped to the allowed range.
func (c *ContactInquiry) SetPriority(p int) {
	c.Priority = ClampPriority(p)
}

// IsRead reports whether the artist has opened the inquiry.
func (c *ContactInquiry) IsRead() bool {
	return c.ReadAt != nil
}

func (c *ContactInquiry) transition(next InquiryStatus) error {
	if c.Status == next {
		return nil
	}
	if !c.Status.CanTransitionTo(next) {
		return apperror.New(apperror.CodeInvalidState, "inquiry cannot move from %s to %s", c.Status, next)
	}
	c.Status = next
	return nil
}

// MarkAsRead stamps ReadAt once and starts handling a pending inquiry.
func (c *ContactInquiry) MarkAsRead(now time.Time) error {
	if c.Status == InquirySpam {
		return apperror.New(apperror.CodeInvalidState, "inquiry is marked as spam")
	}
	if !c.IsRead() {
		c.ReadAt = &now
	}
	if c.Status == InquiryPending {
		return c.transition(InquiryInProgress)
	}
	return nil
}

// RecordReply stores the artist's answer and the time it took.
func (c *ContactInquiry) RecordReply(message string, now time.Time) error {
	if err := c.transition(InquiryReplied); err != nil {
		return err
	}
	if !c.IsRead() {
		c.ReadAt = &now
	}
	c.ReplyMessage = message
	c.RepliedAt = &now
	minutes := int(now.Sub(c.CreatedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	c.ResponseTimeMinutes = &minutes
	return nil
}

// Close ends the conversation.
func (c *ContactInquiry) Close(now time.Time) error {
	if err := c.transition(InquiryClosed); err != nil {
		return err
	}
	c.ClosedAt = &now
	return nil
}

// MarkAsSpam flags the inquiry. Spam is terminal.
func (c *ContactInquiry) MarkAsSpam() error {
	return c.transition(InquirySpam)
}

// Reopen returns a closed or replied inquiry to in_progress.
func (c *ContactInquiry) Reopen() error {
	if err := c.transition(InquiryInProgress); err != nil {
		return err
	}
	c.ClosedAt = nil
	return nil
}

// ApplyStatus routes a requested status to the matching setter.
func (c *ContactInquiry) ApplyStatus(status InquiryStatus, now time.Time) error {
	switch status {
	case InquiryInProgress:
		if c.Status == InquiryPending {
			return c.MarkAsRead(now)
		}
		return c.Reopen()
	case InquiryClosed:
		return c.Close(now)
	case InquirySpam:
		return c.MarkAsSpam()
	case InquiryReplied:
		return apperror.New(apperror.CodeValidation, "use the reply endpoint to reply to an inquiry")
	case InquiryPending:
		return apperror.New(apperror.CodeInvalidState, "an inquiry cannot be moved back to pending")
	}
	return apperror.New(apperror.CodeValidation, "unknown inquiry status %q", status)
}
