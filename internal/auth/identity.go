package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/persistence"
	"github.com/spec-kit/eats-service/internal/repository"
)

// IdentityResolver turns a verified user id into a full user record. Lookup
// failure is a normal outcome, not an error: the request simply stays
// anonymous. A short-lived Redis cache keeps the per-request store hit cheap.
type IdentityResolver struct {
	users    repository.UserRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewIdentityResolver constructs the resolver. cache may be nil.
func NewIdentityResolver(users repository.UserRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Resolve fetches the user for an id that came out of a successful token
// verification. Returns (nil, false) when no such user exists or the store
// is unreachable.
func (r *IdentityResolver) Resolve(ctx context.Context, id int64) (*domain.User, bool) {
	if user, ok := r.fromCache(ctx, id); ok {
		return user, true
	}

	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, false
	}

	r.toCache(ctx, user)
	return user, true
}

// Invalidate drops a cached identity, e.g. after a profile edit.
func (r *IdentityResolver) Invalidate(ctx context.Context, id int64) {
	if r.cache == nil || r.cache.Client == nil {
		return
	}
	if err := r.cache.Client.Del(ctx, identityKey(id)).Err(); err != nil {
		r.logger.Warn("identity cache invalidate failed", zap.Int64("user_id", id), zap.Error(err))
	}
}

func (r *IdentityResolver) fromCache(ctx context.Context, id int64) (*domain.User, bool) {
	if r.cache == nil || r.cache.Client == nil || r.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := r.cache.Client.Get(ctx, identityKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (r *IdentityResolver) toCache(ctx context.Context, user *domain.User) {
	if r.cache == nil || r.cache.Client == nil || r.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := r.cache.Client.Set(ctx, identityKey(user.ID), raw, r.cacheTTL).Err(); err != nil {
		r.logger.Warn("identity cache write failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

func identityKey(id int64) string {
	return fmt.Sprintf("identity:%d", id)
}
