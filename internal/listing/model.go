// File: internal/listing/model.go
package listing

import (
	"estate_backend/internal/common"

	"github.com/google/uuid"
)

// ListingType is either a rental or a sale.
type ListingType string

const (
	TypeRent ListingType = "rent"
	TypeSale ListingType = "sale"
)

// Valid reports whether t is one of the known listing types.
func (t ListingType) Valid() bool {
	return t == TypeRent || t == TypeSale
}

// Listing is a property advertisement owned by exactly one user.
type Listing struct {
	common.BaseModel
	Name          string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description   string      `gorm:"type:text;not null" json:"description"`
	Address       string      `gorm:"type:text;not null" json:"address"`
	RegularPrice  float64     `gorm:"not null;index" json:"regularPrice"`
	DiscountPrice float64     `gorm:"not null" json:"discountPrice"`
	Bathrooms     int         `gorm:"not null" json:"bathrooms"`
	Bedrooms      int         `gorm:"not null" json:"bedrooms"`
	Furnished     bool        `gorm:"not null" json:"furnished"`
	Parking       bool        `gorm:"not null" json:"parking"`
	Type          ListingType `gorm:"type:varchar(10);not null;index" json:"type"`
	Offer         bool        `gorm:"not null;index" json:"offer"`
	ImageURLs     []string    `gorm:"column:image_urls;serializer:json;type:text" json:"imageUrls"`
	UserRef       uuid.UUID   `gorm:"column:user_ref;type:uuid;not null;index" json:"userRef"`
}

// TableName specifies the table name for GORM.
func (Listing) TableName() string {
	return "listings"
}

// CreateListingRequest is the body of POST /listing/create.
// UserRef may be omitted; it then defaults to the caller.
type CreateListingRequest struct {
	Name          string   `json:"name" binding:"required,max=255"`
	Description   string   `json:"description" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	RegularPrice  float64  `json:"regularPrice" binding:"required,gt=0"`
	DiscountPrice float64  `json:"discountPrice" binding:"gte=0"`
	Bathrooms     int      `json:"bathrooms" binding:"required,gte=1"`
	Bedrooms      int      `json:"bedrooms" binding:"required,gte=1"`
	Furnished     bool     `json:"furnished"`
	Parking       bool     `json:"parking"`
	Type          string   `json:"type" binding:"required,oneof=rent sale"`
	Offer         bool     `json:"offer"`
	ImageURLs     []string `json:"imageUrls" binding:"omitempty,dive,required"`
	UserRef       string   `json:"userRef"`
}

// UpdateListingRequest is the body of POST /listing/update/:id. Absent fields
// are left unchanged. Ownership cannot be transferred, so userRef is not accepted.
type UpdateListingRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Description   *string  `json:"description" binding:"omitempty,min=1"`
	Address       *string  `json:"address" binding:"omitempty,min=1"`
	RegularPrice  *float64 `json:"regularPrice" binding:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discountPrice" binding:"omitempty,gte=0"`
	Bathrooms     *int     `json:"bathrooms" binding:"omitempty,gte=1"`
	Bedrooms      *int     `json:"bedrooms" binding:"omitempty,gte=1"`
	Furnished     *bool    `json:"furnished"`
	Parking       *bool    `json:"parking"`
	Type          *string  `json:"type" binding:"omitempty,oneof=rent sale"`
	Offer         *bool    `json:"offer"`
	ImageURLs     []string `json:"imageUrls" binding:"omitempty,dive,required"`
}

// Patch is a store-neutral partial update. Nil fields are untouched.
type Patch struct {
	Name          *string
	Description   *string
	Address       *string
	RegularPrice  *float64
	DiscountPrice *float64
	Bathrooms     *int
	Bedrooms      *int
	Furnished     *bool
	Parking       *bool
	Type          *ListingType
	Offer         *bool
	ImageURLs     []string
}

// Patch converts the request into a Patch. An explicit empty imageUrls array
// clears the images; an absent one leaves them.
func (r UpdateListingRequest) Patch() Patch {
	p := Patch{
		Name:          r.Name,
		Description:   r.Description,
		Address:       r.Address,
		RegularPrice:  r.RegularPrice,
		DiscountPrice: r.DiscountPrice,
		Bathrooms:     r.Bathrooms,
		Bedrooms:      r.Bedrooms,
		Furnished:     r.Furnished,
		Parking:       r.Parking,
		Offer:         r.Offer,
		ImageURLs:     r.ImageURLs,
	}
	if r.Type != nil {
		t := ListingType(*r.Type)
		p.Type = &t
	}
	return p
}

// Apply writes the patch onto l. Used by stores that update whole documents
// and by the search indexer.
func (p Patch) Apply(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.RegularPrice != nil {
		l.RegularPrice = *p.RegularPrice
	}
	if p.DiscountPrice != nil {
		l.DiscountPrice = *p.DiscountPrice
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Furnished != nil {
		l.Furnished = *p.Furnished
	}
	if p.Parking != nil {
		l.Parking = *p.Parking
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.Offer != nil {
		l.Offer = *p.Offer
	}
	if p.ImageURLs != nil {
		l.ImageURLs = p.ImageURLs
	}
}

// columns maps the patch onto GORM column names.
func (p Patch) columns() map[string]interface{} {
	m := make(map[string]interface{})
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Address != nil {
		m["address"] = *p.Address
	}
	if p.RegularPrice != nil {
		m["regular_price"] = *p.RegularPrice
	}
	if p.DiscountPrice != nil {
		m["discount_price"] = *p.DiscountPrice
	}
	if p.Bathrooms != nil {
		m["bathrooms"] = *p.Bathrooms
	}
	if p.Bedrooms != nil {
		m["bedrooms"] = *p.Bedrooms
	}
	if p.Furnished != nil {
		m["furnished"] = *p.Furnished
	}
	if p.Parking != nil {
		m["parking"] = *p.Parking
	}
	if p.Type != nil {
		m["type"] = string(*p.Type)
	}
	if p.Offer != nil {
		m["offer"] = *p.Offer
	}
	return m
}
