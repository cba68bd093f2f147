package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/pkg/util"
)

func TestCheck_Public(t *testing.T) {
	assert.NoError(t, Check(nil, RequirePublic))
	assert.NoError(t, Check(&domain.User{ID: 1, Role: domain.RoleClient}, RequirePublic))
}

func TestCheck_AnonymousDenied(t *testing.T) {
	err := Check(nil, RequireAny)
	require.Error(t, err)
	assert.True(t, util.IsUnauthorized(err))

	err = Check(nil, RequireOwner)
	require.Error(t, err)
	assert.True(t, util.IsUnauthorized(err), "missing identity is Unauthorized, not Forbidden")
}

func TestCheck_AuthenticatedAny(t *testing.T) {
	for _, role := range []domain.UserRole{domain.RoleClient, domain.RoleOwner, domain.RoleDelivery} {
		assert.NoError(t, Check(&domain.User{ID: 1, Role: role}, RequireAny))
	}
}

func TestCheck_RoleMismatchForbidden(t *testing.T) {
	owner := &domain.User{ID: 1, Role: domain.RoleOwner}

	assert.NoError(t, Check(owner, RequireOwner))

	err := Check(owner, RequireClient)
	require.Error(t, err)
	assert.True(t, util.IsForbidden(err), "wrong role is Forbidden, not Unauthorized")
}

func TestCheckOwnership(t *testing.T) {
	user := &domain.User{ID: 5, Role: domain.RoleOwner}

	assert.NoError(t, CheckOwnership(user, 5))
	assert.True(t, util.IsForbidden(CheckOwnership(user, 6)))
	assert.True(t, util.IsUnauthorized(CheckOwnership(nil, 6)))
}

// guardApp builds a fiber app with the context builder, the guard
// middleware for one operation and a handler counting its own executions.
func guardApp(t *testing.T, guard *Guard, op string, user *domain.User, handlerRuns *int) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(PrincipalKey, user)
		}
		return c.Next()
	})
	app.Post("/op", guard.Middleware(op), func(c *fiber.Ctx) error {
		*handlerRuns++
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func testErrorHandler(c *fiber.Ctx, err error) error {
	de := util.ToDomainError(err)
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
}

func TestGuardMiddleware_DeniesBeforeHandler(t *testing.T) {
	guard := NewGuard()
	guard.Register("orders.create", RequireClient)

	runs := 0
	owner := &domain.User{ID: 1, Role: domain.RoleOwner}
	app := guardApp(t, guard, "orders.create", owner, &runs)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/op", nil), int(time.Second.Milliseconds()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, runs, "handler must not run on deny")
}

func TestGuardMiddleware_AllowsMatchingRole(t *testing.T) {
	guard := NewGuard()
	guard.Register("orders.create", RequireClient)

	runs := 0
	client := &domain.User{ID: 1, Role: domain.RoleClient}
	app := guardApp(t, guard, "orders.create", client, &runs)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/op", nil), int(time.Second.Milliseconds()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, runs)
}

func TestGuardMiddleware_UnregisteredOperationDenied(t *testing.T) {
	guard := NewGuard()

	runs := 0
	client := &domain.User{ID: 1, Role: domain.RoleClient}
	app := guardApp(t, guard, "never.registered", client, &runs)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/op", nil), int(time.Second.Milliseconds()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, runs)

	// Anonymous against an unregistered operation is Unauthorized.
	appAnon := guardApp(t, guard, "never.registered", nil, &runs)
	resp, err = appAnon.Test(httptest.NewRequest(http.MethodPost, "/op", nil), int(time.Second.Milliseconds()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
