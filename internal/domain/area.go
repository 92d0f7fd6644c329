package domain

type Area struct {
	Model
	Title           string     `gorm:"size:255;not null;uniqueIndex:idx_areas_title_live,where:deleted_at IS NULL" json:"title"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	Properties      []Property `gorm:"constraint:OnDelete:CASCADE" json:"properties,omitempty"`
	Medias          []Media    `gorm:"constraint:OnDelete:CASCADE" json:"medias,omitempty"`
	PropertiesCount int64      `gorm:"-" json:"properties_count"`
}
