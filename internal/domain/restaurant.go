package domain

import "time"

// Category groups restaurants by cuisine.
type Category struct {
	ID         int64
	Name       string
	Slug       string
	CoverImage string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Restaurant is owned by exactly one OWNER user and belongs to one category.
type Restaurant struct {
	ID            int64
	Name          string
	CoverImage    string
	Address       string
	CategoryID    *int64
	OwnerID       int64
	IsPromoted    bool
	PromotedUntil *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
