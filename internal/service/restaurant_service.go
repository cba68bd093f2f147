package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/pkg/util"
)

// RestaurantService coordinates the restaurant and menu catalog.
type RestaurantService struct {
	restaurants repository.RestaurantRepository
	categories  repository.CategoryRepository
	dishes      repository.DishRepository
}

// RestaurantDependencies bundles repositories for the restaurant service.
type RestaurantDependencies struct {
	RestaurantRepo repository.RestaurantRepository
	CategoryRepo   repository.CategoryRepository
	DishRepo       repository.DishRepository
}

// RestaurantInput describes creation/edit payloads.
type RestaurantInput struct {
	Name         string
	CoverImage   string
	Address      string
	CategoryName *string
}

// DishInput describes dish creation/edit payloads.
type DishInput struct {
	Name        string
	Price       int
	Photo       string
	Description string
	Options     []domain.DishOption
}

// NewRestaurantService constructs the service.
func NewRestaurantService(deps RestaurantDependencies) *RestaurantService {
	return &RestaurantService{
		restaurants: deps.RestaurantRepo,
		categories:  deps.CategoryRepo,
		dishes:      deps.DishRepo,
	}
}

// Create registers a new restaurant owned by the caller.
func (s *RestaurantService) Create(ctx context.Context, owner *domain.User, input RestaurantInput) (*domain.Restaurant, error) {
	restaurant := &domain.Restaurant{
		Name:       input.Name,
		CoverImage: input.CoverImage,
		Address:    input.Address,
		OwnerID:    owner.ID,
	}

	if input.CategoryName != nil {
		category, err := s.categories.GetOrCreate(ctx, *input.CategoryName, slugify(*input.CategoryName), "")
		if err != nil {
			return nil, err
		}
		restaurant.CategoryID = &category.ID
	}

	if err := s.restaurants.Create(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// Edit updates a restaurant. Only its owner may edit it; the ownership
// decision sits next to the role guard's, not inside SQL.
func (s *RestaurantService) Edit(ctx context.Context, caller *domain.User, restaurantID int64, input RestaurantInput) (*domain.Restaurant, error) {
	restaurant, err := s.ownedRestaurant(ctx, caller, restaurantID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		restaurant.Name = input.Name
	}
	if input.CoverImage != "" {
		restaurant.CoverImage = input.CoverImage
	}
	if input.Address != "" {
		restaurant.Address = input.Address
	}
	if input.CategoryName != nil {
		category, err := s.categories.GetOrCreate(ctx, *input.CategoryName, slugify(*input.CategoryName), "")
		if err != nil {
			return nil, err
		}
		restaurant.CategoryID = &category.ID
	}

	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// Delete removes a restaurant owned by the caller.
func (s *RestaurantService) Delete(ctx context.Context, caller *domain.User, restaurantID int64) error {
	if _, err := s.ownedRestaurant(ctx, caller, restaurantID); err != nil {
		return err
	}
	return s.restaurants.Delete(ctx, restaurantID)
}

// Get fetches one restaurant with its menu.
func (s *RestaurantService) Get(ctx context.Context, id int64) (*domain.Restaurant, []*domain.Dish, error) {
	restaurant, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewNotFound("restaurant")
		}
		return nil, nil, err
	}
	dishes, err := s.dishes.ListByRestaurant(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return restaurant, dishes, nil
}

// List returns restaurants matching the filter, promoted first.
func (s *RestaurantService) List(ctx context.Context, filter repository.RestaurantFilter) ([]*domain.Restaurant, error) {
	return s.restaurants.List(ctx, filter)
}

// Categories lists all cuisine categories.
func (s *RestaurantService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// CreateDish adds a dish to a restaurant owned by the caller.
func (s *RestaurantService) CreateDish(ctx context.Context, caller *domain.User, restaurantID int64, input DishInput) (*domain.Dish, error) {
	if _, err := s.ownedRestaurant(ctx, caller, restaurantID); err != nil {
		return nil, err
	}

	dish := &domain.Dish{
		RestaurantID: restaurantID,
		Name:         input.Name,
		Price:        input.Price,
		Photo:        input.Photo,
		Description:  input.Description,
		Options:      input.Options,
	}
	if err := s.dishes.Create(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

// EditDish updates a dish on a restaurant owned by the caller.
func (s *RestaurantService) EditDish(ctx context.Context, caller *domain.User, dishID int64, input DishInput) (*domain.Dish, error) {
	dish, err := s.ownedDish(ctx, caller, dishID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		dish.Name = input.Name
	}
	if input.Price > 0 {
		dish.Price = input.Price
	}
	if input.Photo != "" {
		dish.Photo = input.Photo
	}
	if input.Description != "" {
		dish.Description = input.Description
	}
	if input.Options != nil {
		dish.Options = input.Options
	}

	if err := s.dishes.Update(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

// DeleteDish removes a dish on a restaurant owned by the caller.
func (s *RestaurantService) DeleteDish(ctx context.Context, caller *domain.User, dishID int64) error {
	if _, err := s.ownedDish(ctx, caller, dishID); err != nil {
		return err
	}
	return s.dishes.Delete(ctx, dishID)
}

func (s *RestaurantService) ownedRestaurant(ctx context.Context, caller *domain.User, restaurantID int64) (*domain.Restaurant, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("restaurant")
		}
		return nil, err
	}
	if err := auth.CheckOwnership(caller, restaurant.OwnerID); err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *RestaurantService) ownedDish(ctx context.Context, caller *domain.User, dishID int64) (*domain.Dish, error) {
	dish, err := s.dishes.GetByID(ctx, dishID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("dish")
		}
		return nil, err
	}
	if _, err := s.ownedRestaurant(ctx, caller, dish.RestaurantID); err != nil {
		return nil, err
	}
	return dish, nil
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
