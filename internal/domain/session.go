package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session holds the single live refresh token of a user.
type Session struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RefreshTokenHash string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	ExpiresAt        time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
