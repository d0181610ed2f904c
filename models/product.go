package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories accepted by the catalog. Anything else is rejected on create.
var ProductCategories = []string{
	"eletrica",
	"material-construcao",
	"ferramentas",
	"iluminacao",
	"cabos",
	"outros",
}

func IsValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}

type ProductImage struct {
	URL       string `json:"url" bson:"url"`
	Alt       string `json:"alt" bson:"alt"`
	IsPrimary bool   `json:"is_primary" bson:"is_primary"`
}

type ProductSpecifications struct {
	Voltage    string `json:"voltage,omitempty" bson:"voltage,omitempty"`
	Power      string `json:"power,omitempty" bson:"power,omitempty"`
	Material   string `json:"material,omitempty" bson:"material,omitempty"`
	Dimensions string `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight     string `json:"weight,omitempty" bson:"weight,omitempty"`
	Color      string `json:"color,omitempty" bson:"color,omitempty"`
	Warranty   string `json:"warranty,omitempty" bson:"warranty,omitempty"`
}

type ProductRating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

type Product struct {
	ID             primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Name           string                `json:"name" bson:"name"`
	Description    string                `json:"description" bson:"description"`
	Price          float64               `json:"price" bson:"price"`
	OriginalPrice  float64               `json:"original_price" bson:"original_price"`
	Discount       int                   `json:"discount" bson:"discount"` // percentage, 0-100
	Stock          int                   `json:"stock" bson:"stock"`
	Category       string                `json:"category" bson:"category"`
	Subcategory    string                `json:"subcategory" bson:"subcategory"`
	Brand          string                `json:"brand" bson:"brand"`
	Model          string                `json:"model" bson:"model"`
	Images         []ProductImage        `json:"images" bson:"images"`
	Specifications ProductSpecifications `json:"specifications" bson:"specifications"`
	Rating         ProductRating         `json:"rating" bson:"rating"`
	Tags           []string              `json:"tags" bson:"tags"`
	IsActive       bool                  `json:"is_active" bson:"is_active"`
	IsFeatured     bool                  `json:"is_featured" bson:"is_featured"`
	Views          int64                 `json:"views" bson:"views"`
	Sales          int64                 `json:"sales" bson:"sales"`
	CreatedAt      time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" bson:"updated_at"`
}

// PrimaryImageURL returns the url of the image flagged as primary, falling
// back to the first image.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// ProductWithReviews is the public read shape: a product enriched with its
// review average and most recent reviews.
type ProductWithReviews struct {
	Product
	ReviewAverage float64   `json:"review_average"`
	ReviewCount   int       `json:"review_count"`
	Reviews       []*Review `json:"reviews"`
}

// ProductListQuery carries the public catalog filters.
type ProductListQuery struct {
	Search    string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int64
	Limit     int64
	// Admin-only filters
	IsActive        *bool
	IncludeInactive bool
}
