package auth

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/pkg/util"
)

// Requirement declares who may invoke an operation.
type Requirement string

const (
	// RequirePublic allows everybody, including anonymous callers.
	RequirePublic Requirement = "PUBLIC"
	// RequireAny allows any authenticated user regardless of role.
	RequireAny Requirement = "ANY"

	RequireClient   = Requirement(domain.RoleClient)
	RequireOwner    = Requirement(domain.RoleOwner)
	RequireDelivery = Requirement(domain.RoleDelivery)
)

// Guard is the single authorization gate in front of every operation. Each
// operation registers its Requirement at route-registration time; an
// operation the table does not know is denied, so forgetting a registration
// fails closed rather than open.
type Guard struct {
	mu  sync.RWMutex
	ops map[string]Requirement
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{ops: make(map[string]Requirement)}
}

// Register records the requirement for an operation identifier.
func (g *Guard) Register(op string, req Requirement) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops[op] = req
}

// Requirement looks up the declared requirement for an operation.
func (g *Guard) Requirement(op string) (Requirement, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	req, ok := g.ops[op]
	return req, ok
}

// Check is the pure allow/deny decision over a resolved identity and a
// requirement. Unauthorized means "log in"; Forbidden means "logged in, but
// not allowed". The two stay distinct all the way to the client.
func Check(user *domain.User, req Requirement) error {
	if req == RequirePublic {
		return nil
	}
	if user == nil {
		return util.NewUnauthorized("authentication required")
	}
	if req == RequireAny {
		return nil
	}
	if Requirement(user.Role) != req {
		return util.NewForbidden("insufficient role")
	}
	return nil
}

// Middleware returns the guard handler for a registered operation. It runs
// after the context builder and before the operation handler; the handler is
// never reached on deny.
func (g *Guard) Middleware(op string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := PrincipalFromContext(c)

		req, ok := g.Requirement(op)
		if !ok {
			// Unregistered operation: most restrictive behavior.
			if user == nil {
				return util.NewUnauthorized("authentication required")
			}
			return util.NewForbidden("operation not permitted")
		}

		if err := Check(user, req); err != nil {
			return err
		}
		return c.Next()
	}
}

// CheckOwnership is the guard-adjacent ownership decision: the caller must
// be the owner of the resource (by id) to proceed. Services use it for
// "edit your own restaurant" style rules so the deny decision stays in one
// place with the role checks.
func CheckOwnership(user *domain.User, ownerID int64) error {
	if user == nil {
		return util.NewUnauthorized("authentication required")
	}
	if user.ID != ownerID {
		return util.NewForbidden("not the owner")
	}
	return nil
}
