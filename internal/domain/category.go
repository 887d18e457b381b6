package domain

import "time"

// Category is a storefront product category as returned by the catalog API
type Category struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	IsActive     bool       `json:"is_active"`
	ProductCount int        `json:"product_count"`
	Description  string     `json:"description,omitempty"`
	Icon         string     `json:"icon,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// CacheMetadata describes the freshness of the cached category list
type CacheMetadata struct {
	LastFetchedAt *time.Time `json:"last_fetched_at"` // nil until the first successful set
	IsLoaded      bool       `json:"is_loaded"`
}
