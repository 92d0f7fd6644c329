package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerKind string

const (
	OwnerArea     OwnerKind = "area"
	OwnerProperty OwnerKind = "property"
)

// MediaOwner identifies the single entity a media record belongs to.
type MediaOwner struct {
	Kind OwnerKind
	ID   string
}

func AreaOwner(id string) MediaOwner     { return MediaOwner{Kind: OwnerArea, ID: id} }
func PropertyOwner(id string) MediaOwner { return MediaOwner{Kind: OwnerProperty, ID: id} }

func (o MediaOwner) String() string { return fmt.Sprintf("%s:%s", o.Kind, o.ID) }

// Column returns the media foreign key column for the owner kind.
func (o MediaOwner) Column() string {
	if o.Kind == OwnerProperty {
		return "property_id"
	}
	return "area_id"
}

type Media struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FileName     string    `gorm:"size:512;not null" json:"file_name"`
	FilePath     string    `gorm:"size:1024;not null" json:"file_path"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	OriginalName string    `gorm:"size:512;not null" json:"original_name"`
	AreaID       *string   `gorm:"size:36;index;check:chk_media_single_owner,(area_id IS NULL) <> (property_id IS NULL)" json:"area_id,omitempty"`
	PropertyID   *string   `gorm:"size:36;index" json:"property_id,omitempty"`
	URL          string    `gorm:"-" json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (m *Media) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *Media) SetOwner(owner MediaOwner) {
	id := owner.ID
	switch owner.Kind {
	case OwnerArea:
		m.AreaID, m.PropertyID = &id, nil
	case OwnerProperty:
		m.AreaID, m.PropertyID = nil, &id
	}
}

// Owner reports the owner of the record; ok is false when neither key is set.
func (m *Media) Owner() (MediaOwner, bool) {
	switch {
	case m.AreaID != nil && m.PropertyID == nil:
		return AreaOwner(*m.AreaID), true
	case m.PropertyID != nil && m.AreaID == nil:
		return PropertyOwner(*m.PropertyID), true
	default:
		return MediaOwner{}, false
	}
}

func (m *Media) OwnedBy(owner MediaOwner) bool {
	got, ok := m.Owner()
	return ok && got == owner
}
