package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/api/http/handlers"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/config"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/internal/service"
)

// In-memory repositories backing a full HTTP stack without Postgres.

type fakeStore struct {
	nextID        int64
	users         map[int64]*domain.User
	verifications map[int64]*domain.Verification
	restaurants   map[int64]*domain.Restaurant
	dishes        map[int64]*domain.Dish
	orders        map[int64]*domain.Order
	categories    map[int64]*domain.Category
	payments      map[int64]*domain.Payment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:        1,
		users:         make(map[int64]*domain.User),
		verifications: make(map[int64]*domain.Verification),
		restaurants:   make(map[int64]*domain.Restaurant),
		dishes:        make(map[int64]*domain.Dish),
		orders:        make(map[int64]*domain.Order),
		categories:    make(map[int64]*domain.Category),
		payments:      make(map[int64]*domain.Payment),
	}
}

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

type fakeUsers struct{ store *fakeStore }

func (r fakeUsers) Create(ctx context.Context, user *domain.User) error {
	user.ID = r.store.id()
	r.store.users[user.ID] = user
	return nil
}

func (r fakeUsers) Update(ctx context.Context, user *domain.User) error {
	r.store.users[user.ID] = user
	return nil
}

func (r fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := r.store.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeVerifications struct{ store *fakeStore }

func (r fakeVerifications) Create(ctx context.Context, verification *domain.Verification) error {
	verification.ID = r.store.id()
	r.store.verifications[verification.ID] = verification
	return nil
}

func (r fakeVerifications) GetByCode(ctx context.Context, code string) (*domain.Verification, error) {
	for _, verification := range r.store.verifications {
		if verification.Code == code {
			return verification, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeVerifications) DeleteByUser(ctx context.Context, userID int64) error {
	for id, verification := range r.store.verifications {
		if verification.UserID == userID {
			delete(r.store.verifications, id)
		}
	}
	return nil
}

func (r fakeVerifications) Delete(ctx context.Context, id int64) error {
	delete(r.store.verifications, id)
	return nil
}

type fakeRestaurants struct{ store *fakeStore }

func (r fakeRestaurants) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	restaurant.ID = r.store.id()
	r.store.restaurants[restaurant.ID] = restaurant
	return nil
}

func (r fakeRestaurants) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	r.store.restaurants[restaurant.ID] = restaurant
	return nil
}

func (r fakeRestaurants) Delete(ctx context.Context, id int64) error {
	delete(r.store.restaurants, id)
	return nil
}

func (r fakeRestaurants) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	if restaurant, ok := r.store.restaurants[id]; ok {
		return restaurant, nil
	}
	return nil, pgx.ErrNoRows
}

func (r fakeRestaurants) List(ctx context.Context, filter repository.RestaurantFilter) ([]*domain.Restaurant, error) {
	var out []*domain.Restaurant
	for _, restaurant := range r.store.restaurants {
		if filter.OwnerID != nil && restaurant.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, restaurant)
	}
	return out, nil
}

func (r fakeRestaurants) ClearExpiredPromotions(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeDishes struct{ store *fakeStore }

func (r fakeDishes) Create(ctx context.Context, dish *domain.Dish) error {
	dish.ID = r.store.id()
	r.store.dishes[dish.ID] = dish
	return nil
}

func (r fakeDishes) Update(ctx context.Context, dish *domain.Dish) error {
	r.store.dishes[dish.ID] = dish
	return nil
}

func (r fakeDishes) Delete(ctx context.Context, id int64) error {
	delete(r.store.dishes, id)
	return nil
}

func (r fakeDishes) GetByID(ctx context.Context, id int64) (*domain.Dish, error) {
	if dish, ok := r.store.dishes[id]; ok {
		return dish, nil
	}
	return nil, pgx.ErrNoRows
}

func (r fakeDishes) ListByRestaurant(ctx context.Context, restaurantID int64) ([]*domain.Dish, error) {
	var out []*domain.Dish
	for _, dish := range r.store.dishes {
		if dish.RestaurantID == restaurantID {
			out = append(out, dish)
		}
	}
	return out, nil
}

type fakeOrders struct{ store *fakeStore }

func (r fakeOrders) Create(ctx context.Context, order *domain.Order) error {
	order.ID = r.store.id()
	r.store.orders[order.ID] = order
	return nil
}

func (r fakeOrders) Update(ctx context.Context, order *domain.Order) error {
	r.store.orders[order.ID] = order
	return nil
}

func (r fakeOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if order, ok := r.store.orders[id]; ok {
		return order, nil
	}
	return nil, pgx.ErrNoRows
}

func (r fakeOrders) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.store.orders {
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DriverID != nil && (order.DriverID == nil || *order.DriverID != *filter.DriverID) {
			continue
		}
		if filter.RestaurantID != nil && order.RestaurantID != *filter.RestaurantID {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

type fakeCategories struct{ store *fakeStore }

func (r fakeCategories) GetOrCreate(ctx context.Context, name, slug, coverImage string) (*domain.Category, error) {
	for _, category := range r.store.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	category := &domain.Category{ID: r.store.id(), Name: name, Slug: slug, CoverImage: coverImage}
	r.store.categories[category.ID] = category
	return category, nil
}

func (r fakeCategories) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, category := range r.store.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeCategories) List(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, category := range r.store.categories {
		out = append(out, category)
	}
	return out, nil
}

func (r fakeCategories) CountRestaurants(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, restaurant := range r.store.restaurants {
		if restaurant.CategoryID != nil && *restaurant.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type fakePayments struct{ store *fakeStore }

func (r fakePayments) Create(ctx context.Context, payment *domain.Payment) error {
	payment.ID = r.store.id()
	r.store.payments[payment.ID] = payment
	return nil
}

func (r fakePayments) ListByUser(ctx context.Context, userID int64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, payment := range r.store.payments {
		if payment.UserID == userID {
			out = append(out, payment)
		}
	}
	return out, nil
}

type apiFixture struct {
	app *fiber.App
	bus *events.Bus
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := zap.NewNop()
	store := newFakeStore()
	bus := events.NewBus(8, logger, nil)

	users := fakeUsers{store}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	resolver := auth.NewIdentityResolver(users, nil, 0, logger)
	guard := auth.NewGuard()

	userSvc := service.NewUserService(config.AuthConfig{BcryptCost: 4}, service.UserDependencies{
		UserRepo:         users,
		VerificationRepo: fakeVerifications{store},
		Tokens:           tokens,
		Resolver:         resolver,
		Bus:              bus,
	})
	restaurantSvc := service.NewRestaurantService(service.RestaurantDependencies{
		RestaurantRepo: fakeRestaurants{store},
		CategoryRepo:   fakeCategories{store},
		DishRepo:       fakeDishes{store},
	})
	orderSvc := service.NewOrderService(service.OrderDependencies{
		OrderRepo:      fakeOrders{store},
		RestaurantRepo: fakeRestaurants{store},
		DishRepo:       fakeDishes{store},
		Bus:            bus,
	})
	paymentSvc := service.NewPaymentService(fakePayments{store}, fakeRestaurants{store}, 7*24*time.Hour)

	app := fiber.New()
	RegisterMiddlewares(app, logger, nil, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("eats-service", "test", nil, nil),
		Users:          handlers.NewUsersHandler(userSvc),
		Restaurants:    handlers.NewRestaurantsHandler(restaurantSvc),
		Orders:         handlers.NewOrdersHandler(orderSvc),
		Payments:       handlers.NewPaymentsHandler(paymentSvc),
		Subscriptions:  handlers.NewSubscriptionsHandler(bus, logger),
		ContextBuilder: auth.NewContextBuilder(tokens, resolver),
		Guard:          guard,
	})
	return &apiFixture{app: app, bus: bus}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.HeaderName, token)
	}

	resp, err := f.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "non-JSON response: %s", raw)
	}
	return resp, decoded
}

func (f *apiFixture) register(t *testing.T, email string, role domain.UserRole) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/users", "", fiber.Map{
		"email": email, "password": "pw", "role": role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	return errObj["code"].(string)
}

func TestAPI_PublicRoutesWorkAnonymously(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/restaurants", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_BadTokenStillReachesPublicRoutes(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/restaurants", "garbage-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a bad token never blocks a public operation")
}

func TestAPI_AnonymousDeniedOnProtectedRoute(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))
}

func TestAPI_RoleMismatchDenied(t *testing.T) {
	f := newAPIFixture(t)
	ownerToken := f.register(t, "owner@example.com", domain.RoleOwner)

	resp, body := f.do(t, http.MethodPost, "/orders", ownerToken, fiber.Map{
		"restaurant_id": 1, "items": []fiber.Map{{"dish_id": 1}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestAPI_FullOrderFlow(t *testing.T) {
	f := newAPIFixture(t)
	ownerToken := f.register(t, "owner@example.com", domain.RoleOwner)
	clientToken := f.register(t, "client@example.com", domain.RoleClient)
	riderToken := f.register(t, "rider@example.com", domain.RoleDelivery)

	resp, body := f.do(t, http.MethodPost, "/restaurants", ownerToken, fiber.Map{
		"name": "Noodle Bar", "address": "1 Broth St",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	restaurantID := int64(body["data"].(map[string]any)["id"].(float64))

	resp, body = f.do(t, http.MethodPost, fmt.Sprintf("/restaurants/%d/dishes", restaurantID), ownerToken, fiber.Map{
		"name": "Ramen", "price": 1200,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dishID := int64(body["data"].(map[string]any)["id"].(float64))

	pending := f.bus.Subscribe(events.TopicPendingOrders)
	defer pending.Close()

	resp, body = f.do(t, http.MethodPost, "/orders", clientToken, fiber.Map{
		"restaurant_id": restaurantID,
		"items":         []fiber.Map{{"dish_id": dishID}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderData := body["data"].(map[string]any)
	orderID := int64(orderData["id"].(float64))
	assert.Equal(t, float64(1200), orderData["total"])
	assert.Equal(t, string(domain.OrderPending), orderData["status"])

	select {
	case ev := <-pending.C():
		payload := ev.Payload.(events.OrderPayload)
		assert.Equal(t, orderID, payload.Order.ID)
	case <-time.After(time.Second):
		t.Fatal("pending order was not announced")
	}

	// Owner cooks, rider takes and delivers.
	resp, _ = f.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID), ownerToken, fiber.Map{
		"status": domain.OrderCooked,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/take", orderID), riderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID), riderToken, fiber.Map{
		"status": domain.OrderDelivered,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(domain.OrderDelivered), body["data"].(map[string]any)["status"])

	// A client who is not a participant cannot read the order.
	otherToken := f.register(t, "other@example.com", domain.RoleClient)
	resp, body = f.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestAPI_SubscriptionRouteRequiresUpgrade(t *testing.T) {
	f := newAPIFixture(t)
	ownerToken := f.register(t, "owner@example.com", domain.RoleOwner)

	resp, _ := f.do(t, http.MethodGet, "/subscriptions/orders/pending", ownerToken, nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
