package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eats-service/internal/api/dto"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/internal/service"
	"github.com/spec-kit/eats-service/pkg/util"
)

// RestaurantsHandler exposes the restaurant and menu catalog.
type RestaurantsHandler struct {
	restaurants *service.RestaurantService
}

// NewRestaurantsHandler constructs handler.
func NewRestaurantsHandler(restaurants *service.RestaurantService) *RestaurantsHandler {
	return &RestaurantsHandler{restaurants: restaurants}
}

// Create handles POST /restaurants.
func (h *RestaurantsHandler) Create(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.RestaurantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Address == "" {
		return fiber.NewError(http.StatusBadRequest, "name and address required")
	}

	restaurant, err := h.restaurants.Create(c.Context(), owner, service.RestaurantInput{
		Name:         req.Name,
		CoverImage:   req.CoverImage,
		Address:      req.Address,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRestaurantResponse(restaurant)})
}

// Edit handles PATCH /restaurants/:id.
func (h *RestaurantsHandler) Edit(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.RestaurantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	restaurant, err := h.restaurants.Edit(c.Context(), owner, id, service.RestaurantInput{
		Name:         req.Name,
		CoverImage:   req.CoverImage,
		Address:      req.Address,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(restaurant)})
}

// Delete handles DELETE /restaurants/:id.
func (h *RestaurantsHandler) Delete(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.restaurants.Delete(c.Context(), owner, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /restaurants with optional search/category filters.
func (h *RestaurantsHandler) List(c *fiber.Ctx) error {
	filter := repository.RestaurantFilter{
		Limit:  c.QueryInt("limit", 25),
		Offset: c.QueryInt("offset", 0),
	}
	if q := c.Query("q"); q != "" {
		filter.Query = &q
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid category id")
		}
		filter.CategoryID = &categoryID
	}

	restaurants, err := h.restaurants.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponses(restaurants)})
}

// Get handles GET /restaurants/:id including the menu.
func (h *RestaurantsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	restaurant, dishes, err := h.restaurants.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"restaurant": dto.NewRestaurantResponse(restaurant),
		"menu":       dto.NewDishResponses(dishes),
	}})
}

// Categories handles GET /categories.
func (h *RestaurantsHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.restaurants.Categories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponses(categories)})
}

// CreateDish handles POST /restaurants/:id/dishes.
func (h *RestaurantsHandler) CreateDish(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.DishRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Price <= 0 {
		return fiber.NewError(http.StatusBadRequest, "name and positive price required")
	}

	dish, err := h.restaurants.CreateDish(c.Context(), owner, restaurantID, service.DishInput{
		Name:        req.Name,
		Price:       req.Price,
		Photo:       req.Photo,
		Description: req.Description,
		Options:     req.Options,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDishResponse(dish)})
}

// EditDish handles PATCH /dishes/:id.
func (h *RestaurantsHandler) EditDish(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	dishID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.DishRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	dish, err := h.restaurants.EditDish(c.Context(), owner, dishID, service.DishInput{
		Name:        req.Name,
		Price:       req.Price,
		Photo:       req.Photo,
		Description: req.Description,
		Options:     req.Options,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDishResponse(dish)})
}

// DeleteDish handles DELETE /dishes/:id.
func (h *RestaurantsHandler) DeleteDish(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	dishID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.restaurants.DeleteDish(c.Context(), owner, dishID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
