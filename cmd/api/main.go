package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eats-service/internal/api/http"
	"github.com/spec-kit/eats-service/internal/api/http/handlers"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/config"
	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/observability"
	"github.com/spec-kit/eats-service/internal/persistence"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/internal/service"
	"github.com/spec-kit/eats-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	// The bus outlives every request; publishers and subscribers all receive
	// this one instance explicitly.
	bus := events.NewBus(cfg.Events.SubscriberBuffer, logger, metrics)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	verificationRepo := repository.NewVerificationRepository(pool)
	restaurantRepo := repository.NewRestaurantRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	dishRepo := repository.NewDishRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	resolver := auth.NewIdentityResolver(userRepo, redis, cfg.Auth.IdentityCacheTTL(), logger)
	contextBuilder := auth.NewContextBuilder(tokens, resolver)
	guard := auth.NewGuard()

	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:         userRepo,
		VerificationRepo: verificationRepo,
		Tokens:           tokens,
		Resolver:         resolver,
		Bus:              bus,
	})
	restaurantService := service.NewRestaurantService(service.RestaurantDependencies{
		RestaurantRepo: restaurantRepo,
		CategoryRepo:   categoryRepo,
		DishRepo:       dishRepo,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:      orderRepo,
		RestaurantRepo: restaurantRepo,
		DishRepo:       dishRepo,
		Bus:            bus,
	})
	paymentService := service.NewPaymentService(paymentRepo, restaurantRepo, cfg.Worker.PromotionDuration())

	mailer := service.NewSMTPMailer(cfg.Mail)
	worker.NewMailWorker(bus, mailer, logger).Start(ctx)
	worker.NewPromotionWorker(restaurantRepo, cfg.Worker.PromotionSweepInterval(), logger).Start(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Restaurants:    handlers.NewRestaurantsHandler(restaurantService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
		Subscriptions:  handlers.NewSubscriptionsHandler(bus, logger),
		ContextBuilder: contextBuilder,
		Guard:          guard,
		PromRegistry:   promRegistry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
