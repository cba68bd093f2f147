package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/config"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/pkg/util"
)

// UserService coordinates account flows: registration, login, profile
// edits and email verification.
type UserService struct {
	users         repository.UserRepository
	verifications repository.VerificationRepository
	tokens        *auth.TokenManager
	resolver      *auth.IdentityResolver
	bus           *events.Bus
	bcryptCost    int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo         repository.UserRepository
	VerificationRepo repository.VerificationRepository
	Tokens           *auth.TokenManager
	Resolver         *auth.IdentityResolver
	Bus              *events.Bus
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{
		users:         deps.UserRepo,
		verifications: deps.VerificationRepo,
		tokens:        deps.Tokens,
		resolver:      deps.Resolver,
		bus:           deps.Bus,
		bcryptCost:    cfg.BcryptCost,
	}
}

// Register creates a new account in the requested role and returns a signed
// identity token. A verification code is created and announced on the bus;
// mail delivery happens out of band.
func (s *UserService) Register(ctx context.Context, email, password string, role domain.UserRole) (*domain.User, string, error) {
	if !role.Valid() {
		return nil, "", util.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", util.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	verification := &domain.Verification{Code: uuid.NewString(), UserID: user.ID}
	if err := s.verifications.Create(ctx, verification); err != nil {
		return nil, "", err
	}

	s.bus.Publish(events.TopicUserCreated, events.UserPayload{
		UserID:           user.ID,
		Email:            user.Email,
		VerificationCode: verification.Code,
	})

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password and issues an identity token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", util.NewUnauthorized("invalid credentials")
		}
		return "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", util.NewUnauthorized("invalid credentials")
	}
	return s.tokens.Sign(user.ID)
}

// Profile fetches a user by id.
func (s *UserService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// EditProfile updates email and/or password of the caller. An email change
// resets verification and triggers a fresh verification code.
func (s *UserService) EditProfile(ctx context.Context, userID int64, email, password *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != nil && *email != user.Email {
		user.Email = *email
		user.Verified = false

		if err := s.verifications.DeleteByUser(ctx, user.ID); err != nil {
			return nil, err
		}
		verification := &domain.Verification{Code: uuid.NewString(), UserID: user.ID}
		if err := s.verifications.Create(ctx, verification); err != nil {
			return nil, err
		}

		s.bus.Publish(events.TopicUserEmailChanged, events.UserPayload{
			UserID:           user.ID,
			Email:            user.Email,
			VerificationCode: verification.Code,
		})
	}

	if password != nil {
		hash, err := auth.HashPassword(*password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, user.ID)
	return user, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *UserService) VerifyEmail(ctx context.Context, code string) error {
	verification, err := s.verifications.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("verification")
		}
		return err
	}

	user, err := s.users.GetByID(ctx, verification.UserID)
	if err != nil {
		return err
	}
	user.Verified = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, user.ID)
	return s.verifications.Delete(ctx, verification.ID)
}
