package dto

import (
	"time"

	"github.com/spec-kit/eats-service/internal/domain"
)

// RestaurantRequest payload for creating or editing a restaurant.
type RestaurantRequest struct {
	Name         string  `json:"name"`
	CoverImage   string  `json:"cover_image"`
	Address      string  `json:"address"`
	CategoryName *string `json:"category_name,omitempty"`
}

// DishRequest payload for creating or editing a dish.
type DishRequest struct {
	Name        string              `json:"name"`
	Price       int                 `json:"price"`
	Photo       string              `json:"photo"`
	Description string              `json:"description"`
	Options     []domain.DishOption `json:"options,omitempty"`
}

// RestaurantResponse is the public shape of a restaurant.
type RestaurantResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CoverImage    string     `json:"cover_image"`
	Address       string     `json:"address"`
	CategoryID    *int64     `json:"category_id,omitempty"`
	OwnerID       int64      `json:"owner_id"`
	IsPromoted    bool       `json:"is_promoted"`
	PromotedUntil *time.Time `json:"promoted_until,omitempty"`
}

// NewRestaurantResponse maps a domain restaurant.
func NewRestaurantResponse(restaurant *domain.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		ID:            restaurant.ID,
		Name:          restaurant.Name,
		CoverImage:    restaurant.CoverImage,
		Address:       restaurant.Address,
		CategoryID:    restaurant.CategoryID,
		OwnerID:       restaurant.OwnerID,
		IsPromoted:    restaurant.IsPromoted,
		PromotedUntil: restaurant.PromotedUntil,
	}
}

// NewRestaurantResponses maps a slice of restaurants.
func NewRestaurantResponses(restaurants []*domain.Restaurant) []RestaurantResponse {
	out := make([]RestaurantResponse, 0, len(restaurants))
	for _, restaurant := range restaurants {
		out = append(out, NewRestaurantResponse(restaurant))
	}
	return out
}

// DishResponse is the public shape of a menu item.
type DishResponse struct {
	ID           int64               `json:"id"`
	RestaurantID int64               `json:"restaurant_id"`
	Name         string              `json:"name"`
	Price        int                 `json:"price"`
	Photo        string              `json:"photo"`
	Description  string              `json:"description"`
	Options      []domain.DishOption `json:"options,omitempty"`
}

// NewDishResponse maps a domain dish.
func NewDishResponse(dish *domain.Dish) DishResponse {
	return DishResponse{
		ID:           dish.ID,
		RestaurantID: dish.RestaurantID,
		Name:         dish.Name,
		Price:        dish.Price,
		Photo:        dish.Photo,
		Description:  dish.Description,
		Options:      dish.Options,
	}
}

// NewDishResponses maps a slice of dishes.
func NewDishResponses(dishes []*domain.Dish) []DishResponse {
	out := make([]DishResponse, 0, len(dishes))
	for _, dish := range dishes {
		out = append(out, NewDishResponse(dish))
	}
	return out
}

// CategoryResponse is the public shape of a category.
type CategoryResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	CoverImage string `json:"cover_image"`
}

// NewCategoryResponses maps a slice of categories.
func NewCategoryResponses(categories []*domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryResponse{
			ID:         category.ID,
			Name:       category.Name,
			Slug:       category.Slug,
			CoverImage: category.CoverImage,
		})
	}
	return out
}
