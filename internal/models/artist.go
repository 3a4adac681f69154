package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Artist is the professional profile of a tattoo artist.
type Artist struct {
	Base
	UserID             string              `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	User               *User               `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CityID             *string             `json:"city_id,omitempty" gorm:"type:varchar(36);index"`
	City               *City               `json:"city,omitempty"`
	StageName          string              `json:"stage_name" gorm:"type:varchar(100);not null"`
	Slug               string              `json:"slug" gorm:"type:varchar(120);uniqueIndex;not null"`
	Bio                string              `json:"bio" gorm:"type:text"`
	HourlyRate         decimal.NullDecimal `json:"hourly_rate" gorm:"type:decimal(10,2)"`
	MinimumPrice       decimal.NullDecimal `json:"minimum_price" gorm:"type:decimal(10,2)"`
	Currency           string              `json:"currency" gorm:"type:varchar(3);default:EUR;not null"`
	Availability       datatypes.JSON      `json:"availability,omitempty"`
	AcceptingBookings  bool                `json:"accepting_bookings" gorm:"not null;index"`
	VerificationStatus VerificationStatus  `json:"verification_status" gorm:"type:varchar(20);default:unverified;not null;index"`
	VerifiedAt         *time.Time          `json:"verified_at,omitempty"`
	Instagram          string              `json:"instagram,omitempty" gorm:"type:varchar(100)"`
	Website            string              `json:"website,omitempty" gorm:"type:varchar(255)"`
	YearsExperience    int                 `json:"years_experience"`
	ViewCount          int64               `json:"view_count" gorm:"not null;default:0"`
	Styles             []Tag               `json:"styles,omitempty" gorm:"many2many:artist_styles"`
	Salons             []ArtistSalon       `json:"salons,omitempty" gorm:"foreignKey:ArtistID"`
}

// IsVerified reports whether vetting is complete.
func (a *Artist) IsVerified() bool {
	return a.VerificationStatus == VerificationVerified
}

// DisplayName is the stage name, or the slug when none was given.
func (a *Artist) DisplayName() string {
	if a.StageName != "" {
		return a.StageName
	}
	return a.Slug
}

// PriceRange renders the pricing for listings, e.g. "80-150 EUR/h".
func (a *Artist) PriceRange() string {
	cur := a.Currency
	if cur == "" {
		cur = "EUR"
	}
	switch {
	case a.MinimumPrice.Valid && a.HourlyRate.Valid:
		return fmt.Sprintf("%s-%s %s/h", a.MinimumPrice.Decimal.StringFixed(0), a.HourlyRate.Decimal.StringFixed(0), cur)
	case a.HourlyRate.Valid:
		return fmt.Sprintf("%s %s/h", a.HourlyRate.Decimal.StringFixed(0), cur)
	case a.MinimumPrice.Valid:
		return fmt.Sprintf("from %s %s", a.MinimumPrice.Decimal.StringFixed(0), cur)
	}
	return "on request"
}

// ProfileCompleteness scores how much of the public profile is filled in, 0-100.
func (a *Artist) ProfileCompleteness() int {
	checks := []bool{
		a.StageName != "",
		a.Bio != "",
		a.CityID != nil,
		a.HourlyRate.Valid || a.MinimumPrice.Valid,
		len(a.Availability) > 0 && string(a.Availability) != "null",
		a.Instagram != "" || a.Website != "",
		len(a.Styles) > 0,
		a.YearsExperience > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

// SetVerification moves the artist to status, stamping VerifiedAt on verification.
func (a *Artist) SetVerification(status VerificationStatus, now time.Time) {
	a.VerificationStatus = status
	if status == VerificationVerified {
		if a.VerifiedAt == nil {
			a.VerifiedAt = &now
		}
		return
	}
	a.VerifiedAt = nil
}

// ArtistSalon links an artist to a salon they work at.
type ArtistSalon struct {
	ArtistID       string          `json:"artist_id" gorm:"primaryKey;type:varchar(36)"`
	SalonID        string          `json:"salon_id" gorm:"primaryKey;type:varchar(36)"`
	Salon          *Salon          `json:"salon,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Artist         *Artist         `json:"artist,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	Schedule       datatypes.JSON  `json:"schedule,omitempty"`
	IsActive       bool            `json:"is_active" gorm:"not null"`
	StartedAt      time.Time       `json:"started_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Salon is a tattoo studio.
type Salon struct {
	Base
	CityID             *string            `json:"city_id,omitempty" gorm:"type:varchar(36);index"`
	City               *City              `json:"city,omitempty"`
	Name               string             `json:"name" gorm:"type:varchar(150);not null"`
	Slug               string             `json:"slug" gorm:"type:varchar(170);uniqueIndex;not null"`
	Address            string             `json:"address" gorm:"type:varchar(255)"`
	Phone              string             `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Email              string             `json:"email,omitempty" gorm:"type:varchar(255)"`
	Website            string             `json:"website,omitempty" gorm:"type:varchar(255)"`
	Description        string             `json:"description" gorm:"type:text"`
	OpeningHours       datatypes.JSON     `json:"opening_hours,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(20);default:unverified;not null;index"`
	// OwnerID is the user who registered the salon. Only the owner and admins manage it.
	OwnerID *string       `json:"owner_id,omitempty" gorm:"type:varchar(36);index"`
	Artists []ArtistSalon `json:"artists,omitempty" gorm:"foreignKey:SalonID"`
}

// OwnedBy reports whether userID registered the salon.
func (s *Salon) OwnedBy(userID string) bool {
	return userID != "" && s.OwnerID != nil && *s.OwnerID == userID
}

// ActiveArtistCount counts the loaded artist links that are active.
func (s *Salon) ActiveArtistCount() int {
	n := 0
	for _, link := range s.Artists {
		if link.IsActive {
			n++
		}
	}
	return n
}
