package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eats-service/internal/domain"
)

// HeaderName is the fixed request header carrying the identity token.
// Absence of the header is a valid, anonymous request.
const HeaderName = "x-jwt"

// PrincipalKey is the request-locals key the resolved identity is stored
// under; exported for transports (e.g. WebSocket) that read locals after
// the upgrade.
const PrincipalKey = "auth_principal"

// ContextBuilder attaches the caller's resolved identity (if any) to the
// request context. It runs before every handler and never rejects a request:
// a missing, garbled or stale token simply leaves the request anonymous, and
// rejection stays the guard's sole responsibility so public operations remain
// reachable with a bad token.
type ContextBuilder struct {
	tokens   *TokenManager
	resolver *IdentityResolver
}

// NewContextBuilder constructs the middleware.
func NewContextBuilder(tokens *TokenManager, resolver *IdentityResolver) *ContextBuilder {
	return &ContextBuilder{tokens: tokens, resolver: resolver}
}

// Handle resolves the x-jwt header into a principal. The context is written
// exactly once, before any handler runs.
func (b *ContextBuilder) Handle(c *fiber.Ctx) error {
	token := c.Get(HeaderName)
	if token == "" {
		return c.Next()
	}

	userID, ok := b.tokens.Verify(token)
	if !ok {
		return c.Next()
	}

	user, ok := b.resolver.Resolve(c.Context(), userID)
	if !ok {
		return c.Next()
	}

	c.Locals(PrincipalKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user, if any.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(PrincipalKey).(*domain.User)
	return user, ok && user != nil
}
