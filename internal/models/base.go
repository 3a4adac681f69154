package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the primary key and timestamps shared by every record.
type Base struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// VerificationStatus tracks the manual vetting stage of an artist or salon.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationScraped    VerificationStatus = "scraped"
	VerificationContacted  VerificationStatus = "contacted"
	VerificationOnboarding VerificationStatus = "onboarding"
	VerificationVerified   VerificationStatus = "verified"
)

var verificationOrder = []VerificationStatus{
	VerificationUnverified,
	VerificationScraped,
	VerificationContacted,
	VerificationOnboarding,
	VerificationVerified,
}

// Valid reports whether s is a known verification status.
func (s VerificationStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank is the position of s in the vetting pipeline, -1 when unknown.
func (s VerificationStatus) Rank() int {
	for i, v := range verificationOrder {
		if v == s {
			return i
		}
	}
	return -1
}
