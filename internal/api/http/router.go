package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/eats-service/internal/api/http/handlers"
	"github.com/spec-kit/eats-service/internal/auth"
)

// Operation identifiers. Each protected operation is registered with the
// guard under one of these names; the guard denies identifiers it has never
// seen.
const (
	OpCreateAccount = "users.create"
	OpLogin         = "users.login"
	OpMe            = "users.me"
	OpUserProfile   = "users.profile"
	OpEditProfile   = "users.edit"
	OpVerifyEmail   = "users.verify_email"

	OpCreateRestaurant = "restaurants.create"
	OpEditRestaurant   = "restaurants.edit"
	OpDeleteRestaurant = "restaurants.delete"
	OpListRestaurants  = "restaurants.list"
	OpGetRestaurant    = "restaurants.get"
	OpListCategories   = "categories.list"

	OpCreateDish = "dishes.create"
	OpEditDish   = "dishes.edit"
	OpDeleteDish = "dishes.delete"

	OpCreateOrder     = "orders.create"
	OpListOrders      = "orders.list"
	OpGetOrder        = "orders.get"
	OpEditOrderStatus = "orders.edit_status"
	OpTakeOrder       = "orders.take"

	OpCreatePayment = "payments.create"
	OpListPayments  = "payments.list"

	OpSubscribePendingOrders = "subscriptions.pending_orders"
	OpSubscribeCookedOrders  = "subscriptions.cooked_orders"
	OpSubscribeOrderUpdates  = "subscriptions.order_updates"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Restaurants    *handlers.RestaurantsHandler
	Orders         *handlers.OrdersHandler
	Payments       *handlers.PaymentsHandler
	Subscriptions  *handlers.SubscriptionsHandler
	ContextBuilder *auth.ContextBuilder
	Guard          *auth.Guard
	PromRegistry   *prometheus.Registry
}

// RegisterRoutes wires HTTP routes. Every route runs the context builder;
// every operation passes through exactly one guard decision declared right
// here, next to its route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	guard := cfg.Guard
	declare := func(op string, req auth.Requirement) fiber.Handler {
		guard.Register(op, req)
		return guard.Middleware(op)
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.PromRegistry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.PromRegistry, promhttp.HandlerOpts{})))
	}

	// Identity resolution happens for every API route, rejection never does.
	api := app.Group("", cfg.ContextBuilder.Handle)

	users := api.Group("/users")
	users.Post("", declare(OpCreateAccount, auth.RequirePublic), cfg.Users.Register)
	users.Post("/login", declare(OpLogin, auth.RequirePublic), cfg.Users.Login)
	users.Post("/verify-email", declare(OpVerifyEmail, auth.RequirePublic), cfg.Users.VerifyEmail)
	users.Get("/me", declare(OpMe, auth.RequireAny), cfg.Users.Me)
	users.Patch("/me", declare(OpEditProfile, auth.RequireAny), cfg.Users.EditProfile)
	users.Get("/:id", declare(OpUserProfile, auth.RequireAny), cfg.Users.Profile)

	restaurants := api.Group("/restaurants")
	restaurants.Get("", declare(OpListRestaurants, auth.RequirePublic), cfg.Restaurants.List)
	restaurants.Post("", declare(OpCreateRestaurant, auth.RequireOwner), cfg.Restaurants.Create)
	restaurants.Get("/:id", declare(OpGetRestaurant, auth.RequirePublic), cfg.Restaurants.Get)
	restaurants.Patch("/:id", declare(OpEditRestaurant, auth.RequireOwner), cfg.Restaurants.Edit)
	restaurants.Delete("/:id", declare(OpDeleteRestaurant, auth.RequireOwner), cfg.Restaurants.Delete)
	restaurants.Post("/:id/dishes", declare(OpCreateDish, auth.RequireOwner), cfg.Restaurants.CreateDish)

	api.Get("/categories", declare(OpListCategories, auth.RequirePublic), cfg.Restaurants.Categories)

	dishes := api.Group("/dishes")
	dishes.Patch("/:id", declare(OpEditDish, auth.RequireOwner), cfg.Restaurants.EditDish)
	dishes.Delete("/:id", declare(OpDeleteDish, auth.RequireOwner), cfg.Restaurants.DeleteDish)

	orders := api.Group("/orders")
	orders.Post("", declare(OpCreateOrder, auth.RequireClient), cfg.Orders.Create)
	orders.Get("", declare(OpListOrders, auth.RequireAny), cfg.Orders.List)
	orders.Get("/:id", declare(OpGetOrder, auth.RequireAny), cfg.Orders.Get)
	orders.Patch("/:id/status", declare(OpEditOrderStatus, auth.RequireAny), cfg.Orders.EditStatus)
	orders.Post("/:id/take", declare(OpTakeOrder, auth.RequireDelivery), cfg.Orders.Take)

	payments := api.Group("/payments")
	payments.Post("", declare(OpCreatePayment, auth.RequireOwner), cfg.Payments.Create)
	payments.Get("", declare(OpListPayments, auth.RequireOwner), cfg.Payments.List)

	subs := api.Group("/subscriptions", cfg.Subscriptions.Upgrade)
	subs.Get("/orders/pending",
		declare(OpSubscribePendingOrders, auth.RequireOwner), cfg.Subscriptions.PendingOrders())
	subs.Get("/orders/cooked",
		declare(OpSubscribeCookedOrders, auth.RequireDelivery), cfg.Subscriptions.CookedOrders())
	subs.Get("/orders/updates",
		declare(OpSubscribeOrderUpdates, auth.RequireAny), cfg.Subscriptions.OrderUpdates())
}
