package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/config"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
)

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memVerificationRepo struct {
	nextID        int64
	verifications map[int64]*domain.Verification
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{nextID: 1, verifications: make(map[int64]*domain.Verification)}
}

func (r *memVerificationRepo) Create(ctx context.Context, verification *domain.Verification) error {
	verification.ID = r.nextID
	r.nextID++
	r.verifications[verification.ID] = verification
	return nil
}

func (r *memVerificationRepo) GetByCode(ctx context.Context, code string) (*domain.Verification, error) {
	for _, verification := range r.verifications {
		if verification.Code == code {
			return verification, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memVerificationRepo) DeleteByUser(ctx context.Context, userID int64) error {
	for id, verification := range r.verifications {
		if verification.UserID == userID {
			delete(r.verifications, id)
		}
	}
	return nil
}

func (r *memVerificationRepo) Delete(ctx context.Context, id int64) error {
	delete(r.verifications, id)
	return nil
}

type userFixture struct {
	svc           *UserService
	bus           *events.Bus
	tokens        *auth.TokenManager
	users         *memUserRepo
	verifications *memVerificationRepo
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	bus := events.NewBus(8, zap.NewNop(), nil)
	users := newMemUserRepo()
	verifications := newMemVerificationRepo()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	resolver := auth.NewIdentityResolver(users, nil, 0, zap.NewNop())

	svc := NewUserService(config.AuthConfig{BcryptCost: 4}, UserDependencies{
		UserRepo:         users,
		VerificationRepo: verifications,
		Tokens:           tokens,
		Resolver:         resolver,
		Bus:              bus,
	})
	return &userFixture{svc: svc, bus: bus, tokens: tokens, users: users, verifications: verifications}
}

func TestUserService_RegisterIssuesTokenAndAnnounces(t *testing.T) {
	f := newUserFixture(t)
	sub := f.bus.Subscribe(events.TopicUserCreated)
	defer sub.Close()

	user, token, err := f.svc.Register(context.Background(), "owner@example.com", "hunter2", domain.RoleOwner)
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "hunter2", user.PasswordHash, "password is stored hashed")

	id, ok := f.tokens.Verify(token)
	require.True(t, ok)
	assert.Equal(t, user.ID, id)

	ev := awaitEvent(t, sub)
	payload := ev.Payload.(events.UserPayload)
	assert.Equal(t, user.ID, payload.UserID)
	assert.NotEmpty(t, payload.VerificationCode)
}

func TestUserService_RegisterRejectsBadInput(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, "x@example.com", "pw", domain.UserRole("ADMIN"))
	assert.Error(t, err, "unknown role")

	_, _, err = f.svc.Register(ctx, "dup@example.com", "pw", domain.RoleClient)
	require.NoError(t, err)
	_, _, err = f.svc.Register(ctx, "dup@example.com", "pw", domain.RoleClient)
	assert.Error(t, err, "duplicate email")
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, _, err := f.svc.Register(ctx, "client@example.com", "secret-pw", domain.RoleClient)
	require.NoError(t, err)

	token, err := f.svc.Login(ctx, "client@example.com", "secret-pw")
	require.NoError(t, err)
	id, ok := f.tokens.Verify(token)
	require.True(t, ok)
	assert.Equal(t, user.ID, id)

	_, err = f.svc.Login(ctx, "client@example.com", "wrong-pw")
	assert.Error(t, err)
	_, err = f.svc.Login(ctx, "nobody@example.com", "secret-pw")
	assert.Error(t, err, "unknown email and wrong password are indistinguishable")
}

func TestUserService_VerifyEmail(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	sub := f.bus.Subscribe(events.TopicUserCreated)
	defer sub.Close()

	user, _, err := f.svc.Register(ctx, "verify@example.com", "pw", domain.RoleClient)
	require.NoError(t, err)
	code := awaitEvent(t, sub).Payload.(events.UserPayload).VerificationCode

	require.NoError(t, f.svc.VerifyEmail(ctx, code))

	got, err := f.svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)

	// The code is single-use.
	assert.Error(t, f.svc.VerifyEmail(ctx, code))
	assert.Error(t, f.svc.VerifyEmail(ctx, "no-such-code"))
}

func TestUserService_EditProfileEmailChangeResetsVerification(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	created := f.bus.Subscribe(events.TopicUserCreated)
	defer created.Close()

	user, _, err := f.svc.Register(ctx, "old@example.com", "pw", domain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, awaitEvent(t, created).Payload.(events.UserPayload).VerificationCode))

	changed := f.bus.Subscribe(events.TopicUserEmailChanged)
	defer changed.Close()

	newEmail := "new@example.com"
	got, err := f.svc.EditProfile(ctx, user.ID, &newEmail, nil)
	require.NoError(t, err)
	assert.Equal(t, newEmail, got.Email)
	assert.False(t, got.Verified, "email change resets verification")

	ev := awaitEvent(t, changed)
	payload := ev.Payload.(events.UserPayload)
	assert.Equal(t, newEmail, payload.Email)
	assert.NotEmpty(t, payload.VerificationCode)
}

func TestUserService_EditProfilePasswordChange(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, _, err := f.svc.Register(ctx, "pw@example.com", "old-pw", domain.RoleClient)
	require.NoError(t, err)

	newPassword := "new-pw"
	_, err = f.svc.EditProfile(ctx, user.ID, nil, &newPassword)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "pw@example.com", "new-pw")
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, "pw@example.com", "old-pw")
	assert.Error(t, err)
}
