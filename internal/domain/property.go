package domain

type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeVilla,
		PropertyTypeTownhouse, PropertyTypeLand, PropertyTypeCommercial:
		return true
	default:
		return false
	}
}

type SaleType string

const (
	SaleTypeSale SaleType = "sale"
	SaleTypeRent SaleType = "rent"
)

func (t SaleType) Valid() bool {
	return t == SaleTypeSale || t == SaleTypeRent
}

type Property struct {
	Model
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	PropertyType PropertyType `gorm:"size:32;not null;index" json:"property_type"`
	SaleType     SaleType     `gorm:"size:16;not null;index" json:"sale_type"`
	Price        int64        `gorm:"not null;index" json:"price"`
	Rooms        string       `gorm:"size:32;not null" json:"rooms"`
	Beds         string       `gorm:"size:32;not null" json:"beds"`
	Baths        string       `gorm:"size:32;not null" json:"baths"`
	AreaID       string       `gorm:"size:36;not null;index" json:"area_id"`
	Medias       []Media      `gorm:"constraint:OnDelete:CASCADE" json:"medias,omitempty"`
}
