package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// MaxPhotoSize caps product photo uploads at 1MB
const MaxPhotoSize = 1 << 20

// Product represents a product in the catalog
type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Slug             string          `json:"slug" db:"slug"`
	Description      string          `json:"description" db:"description"`
	Price            decimal.Decimal `json:"price" db:"price"`
	CategoryID       uuid.UUID       `json:"category_id" db:"category_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	Shipping         bool            `json:"shipping" db:"shipping"`
	Photo            []byte          `json:"-" db:"photo"`
	PhotoContentType string          `json:"-" db:"photo_content_type"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Slugify derives the URL-safe, lowercased, hyphenated identifier for a name
func Slugify(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// NormalizePrice truncates a price to exactly 2 decimal places
func NormalizePrice(price decimal.Decimal) decimal.Decimal {
	return price.Truncate(2)
}
