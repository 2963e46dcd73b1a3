package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxProductImages is the number of images a product keeps.
const MaxProductImages = 10

type Product struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string          `json:"name" gorm:"not null;index" validate:"required,max=100"`
	Description    string          `json:"description" gorm:"type:text;not null" validate:"required,max=1000"`
	Category       ProductCategory `json:"category" gorm:"type:varchar(20);not null;index" validate:"required,oneof=salon chambre cuisine gigogne"`
	Price          float64         `json:"price" gorm:"not null;index" validate:"gte=0,finite"`
	OldPrice       *float64        `json:"oldPrice,omitempty" validate:"omitempty,gte=0"`
	Images         []ProductImage  `json:"images" gorm:"type:jsonb;serializer:json" validate:"max=10,dive"`
	Specifications Specifications  `json:"specifications" gorm:"embedded;embeddedPrefix:spec_"`
	Stock          int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	IsActive       bool            `json:"isActive" gorm:"not null;index"`
	Featured       bool            `json:"featured" gorm:"not null;index"`
	Tags           []string        `json:"tags" gorm:"type:jsonb;serializer:json" validate:"dive,max=50"`
	SEO            SEO             `json:"seo" gorm:"embedded;embeddedPrefix:seo_"`
	Analytics      Analytics       `json:"analytics" gorm:"embedded;embeddedPrefix:analytics_"`
	CreatedAt      time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ProductImage struct {
	URL       string `json:"url" validate:"imageurl"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type Specifications struct {
	Dimensions Dimensions `json:"dimensions" gorm:"embedded;embeddedPrefix:dim_"`
	Material   string     `json:"material,omitempty" validate:"max=200"`
	Colors     []string   `json:"colors" gorm:"type:jsonb;serializer:json" validate:"dive,max=50"`
	Weight     float64    `json:"weight,omitempty" validate:"gte=0"`
}

type Dimensions struct {
	Length float64 `json:"length,omitempty" validate:"gte=0"`
	Width  float64 `json:"width,omitempty" validate:"gte=0"`
	Height float64 `json:"height,omitempty" validate:"gte=0"`
	Unit   string  `json:"unit" gorm:"type:varchar(4);default:'cm'" validate:"oneof=cm m mm"`
}

type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty" validate:"max=60"`
	MetaDescription string `json:"metaDescription,omitempty" validate:"max=160"`
	// Slug is unique; an empty slug is stored as NULL so it never collides.
	Slug *string `json:"slug,omitempty" gorm:"uniqueIndex" validate:"omitempty,slug"`
}

type Analytics struct {
	Views       int `json:"views" gorm:"not null;default:0"`
	AddedToCart int `json:"addedToCart" gorm:"not null;default:0"`
	Purchased   int `json:"purchased" gorm:"not null;default:0"`
}

type ProductCategory string

const (
	CategorySalon   ProductCategory = "salon"
	CategoryChambre ProductCategory = "chambre"
	CategoryCuisine ProductCategory = "cuisine"
	CategoryGigogne ProductCategory = "gigogne"
)

func (c ProductCategory) IsValid() bool {
	switch c {
	case CategorySalon, CategoryChambre, CategoryCuisine, CategoryGigogne:
		return true
	}
	return false
}

// DiscountPercentage is the whole-number markdown from OldPrice, or 0 when not on sale.
func (p *Product) DiscountPercentage() int {
	if p.OldPrice == nil || *p.OldPrice <= p.Price {
		return 0
	}
	return int(math.Round((*p.OldPrice - p.Price) / *p.OldPrice * 100))
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// PrimaryImage returns the first image flagged primary, else the first image, else nil.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

func (p *Product) SlugValue() string {
	if p.SEO.Slug == nil {
		return ""
	}
	return *p.SEO.Slug
}

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		DiscountPercentage int           `json:"discountPercentage"`
		IsInStock          bool          `json:"isInStock"`
		PrimaryImage       *ProductImage `json:"primaryImage,omitempty"`
	}{
		product:            product(p),
		DiscountPercentage: p.DiscountPercentage(),
		IsInStock:          p.IsInStock(),
		PrimaryImage:       p.PrimaryImage(),
	})
}
