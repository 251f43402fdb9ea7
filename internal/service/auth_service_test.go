package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"qmate-api/internal/model"
	"qmate-api/internal/repository"
	"qmate-api/internal/security"
)

type authFixture struct {
	service *AuthService
	dir     *repository.MemoryDirectory
	codec   *security.TokenCodec
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	dir := repository.NewMemoryDirectory()
	codec, err := security.NewTokenCodec("test-secret", "HS256")
	require.NoError(t, err)

	svc, err := NewAuthService(AuthConfig{AccessTTL: 30 * time.Minute, RefreshTTL: 7 * 24 * time.Hour},
		dir, security.NewPasswordHasher(bcrypt.MinCost), codec)
	require.NoError(t, err)

	return authFixture{service: svc, dir: dir, codec: codec}
}

func (f authFixture) signup(t *testing.T, email string, password string) model.User {
	t.Helper()

	user, err := f.service.Signup(context.Background(), SignupInput{Email: email, Password: password, Name: "Test User"})
	require.NoError(t, err)
	return user
}

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a student by default with a hashed password", func(t *testing.T) {
		f := newAuthFixture(t)

		user, err := f.service.Signup(ctx, SignupInput{Email: "Alice@Example.com", Password: "s3cret-pass", Name: " Alice "})
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.Equal(t, "Alice", user.Name)
		require.Equal(t, model.RoleStudent, user.Role)
		require.True(t, user.IsActive)
		require.NotEqual(t, "s3cret-pass", user.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
	})

	t.Run("rejects duplicate email and leaves the directory unchanged", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signup(t, "alice@example.com", "first-password")

		before, err := f.dir.Count(ctx)
		require.NoError(t, err)

		_, err = f.service.Signup(ctx, SignupInput{Email: "ALICE@example.com", Password: "other-password", Name: "Impostor"})
		require.ErrorIs(t, err, model.ErrDuplicateIdentity)

		after, err := f.dir.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("rejects unknown department without creating a record", func(t *testing.T) {
		f := newAuthFixture(t)
		missing := uuid.New()

		_, err := f.service.Signup(ctx, SignupInput{Email: "dep@example.com", Password: "password1", Name: "Dep", DepartmentID: &missing})
		require.ErrorIs(t, err, model.ErrUnknownDepartment)

		count, err := f.dir.Count(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("accepts an existing department and explicit role", func(t *testing.T) {
		f := newAuthFixture(t)
		dep, err := f.dir.Departments().Create(ctx, model.NewDepartment{Name: "Finance", Slug: "finance"})
		require.NoError(t, err)

		user, err := f.service.Signup(ctx, SignupInput{Email: "agent@example.com", Password: "password1", Name: "Agent", Role: model.RoleAgent, DepartmentID: &dep.ID})
		require.NoError(t, err)
		require.Equal(t, model.RoleAgent, user.Role)
		require.NotNil(t, user.DepartmentID)
		require.Equal(t, dep.ID, *user.DepartmentID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.Signup(ctx, SignupInput{Email: " ", Password: "password1", Name: "X"})
		require.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = f.service.Signup(ctx, SignupInput{Email: "x@example.com", Password: "password1", Name: "X", Role: model.Role("root")})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues an access and a refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		created := f.signup(t, "bob@example.com", "right-password")

		user, pair, err := f.service.Login(ctx, " BOB@example.com", "right-password")
		require.NoError(t, err)
		require.Equal(t, created.ID, user.ID)
		require.Equal(t, "bearer", pair.TokenType)
		require.Equal(t, int64(1800), pair.ExpiresIn)

		access, err := f.codec.Validate(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, security.TokenAccess, access.Kind)
		require.Equal(t, created.ID.String(), access.Subject)
		require.Equal(t, "bob@example.com", access.Email)
		require.Equal(t, string(model.RoleStudent), access.Role)

		refresh, err := f.codec.Validate(pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, security.TokenRefresh, refresh.Kind)
		require.Equal(t, created.ID.String(), refresh.Subject)
		require.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
	})

	t.Run("does not distinguish unknown email from wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signup(t, "bob@example.com", "right-password")

		_, _, wrongPassword := f.service.Login(ctx, "bob@example.com", "wrong")
		_, _, unknownEmail := f.service.Login(ctx, "nobody@example.com", "wrong")

		require.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)
		require.ErrorIs(t, unknownEmail, model.ErrInvalidCredentials)
		require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("rejects inactive accounts with correct credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		created := f.signup(t, "carol@example.com", "right-password")
		require.NoError(t, f.dir.SetActive(ctx, created.ID, false))

		_, _, err := f.service.Login(ctx, "carol@example.com", "right-password")
		require.ErrorIs(t, err, model.ErrAccountInactive)

		_, _, err = f.service.Login(ctx, "carol@example.com", "wrong-password")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("propagates infrastructure failures", func(t *testing.T) {
		f := newAuthFixture(t)
		f.service.directory = failingDirectory{err: errConnectionRefused}

		_, _, err := f.service.Login(ctx, "bob@example.com", "whatever")
		require.ErrorIs(t, err, errConnectionRefused)
		require.NotErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates both tokens for the same subject", func(t *testing.T) {
		f := newAuthFixture(t)
		created := f.signup(t, "dave@example.com", "right-password")
		_, pair, err := f.service.Login(ctx, "dave@example.com", "right-password")
		require.NoError(t, err)

		rotated, err := f.service.Refresh(pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		require.NotEqual(t, pair.AccessToken, rotated.AccessToken)

		access, err := f.codec.Validate(rotated.AccessToken)
		require.NoError(t, err)
		require.Equal(t, created.ID.String(), access.Subject)
		require.Equal(t, security.TokenAccess, access.Kind)

		refresh, err := f.codec.Validate(rotated.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, security.TokenRefresh, refresh.Kind)

		// The previous refresh token is not revoked.
		_, err = f.service.Refresh(pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects an access token as wrong kind", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signup(t, "erin@example.com", "right-password")
		_, pair, err := f.service.Login(ctx, "erin@example.com", "right-password")
		require.NoError(t, err)

		_, err = f.service.Refresh(pair.AccessToken)
		require.ErrorIs(t, err, model.ErrWrongTokenKind)
		require.NotErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("rejects garbage as invalid", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.Refresh("garbage")
		require.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("does not consult the directory", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.codec.Issue(security.Claims{Subject: "U1", Email: "u1@example.com", Role: "student"}, security.TokenRefresh, time.Hour)
		require.NoError(t, err)

		rotated, err := f.service.Refresh(token)
		require.NoError(t, err)
		require.Zero(t, f.dir.Lookups())

		access, err := f.codec.Validate(rotated.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "U1", access.Subject)
	})
}

func TestGetCurrentUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newAuthFixture(t)
	created := f.signup(t, "frank@example.com", "right-password")

	user, err := f.service.GetCurrentUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, user.Email)

	_, err = f.service.GetCurrentUser(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrIdentityNotFound)

	require.NoError(t, f.dir.SetActive(ctx, created.ID, false))
	_, err = f.service.GetCurrentUser(ctx, created.ID)
	require.ErrorIs(t, err, model.ErrAccountInactive)
}

func TestNewAuthServiceValidation(t *testing.T) {
	t.Parallel()

	codec, err := security.NewTokenCodec("secret", "HS256")
	require.NoError(t, err)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	_, err = NewAuthService(AuthConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour}, nil, hasher, codec)
	require.Error(t, err)

	_, err = NewAuthService(AuthConfig{AccessTTL: 0, RefreshTTL: time.Hour}, repository.NewMemoryDirectory(), hasher, codec)
	require.Error(t, err)
}

var errConnectionRefused = errors.New("dial tcp: connection refused")

type failingDirectory struct {
	err error
}

func (d failingDirectory) FindByEmail(context.Context, string) (model.User, error) {
	return model.User{}, d.err
}

func (d failingDirectory) FindByID(context.Context, uuid.UUID) (model.User, error) {
	return model.User{}, d.err
}

func (d failingDirectory) Create(context.Context, model.NewUser) (model.User, error) {
	return model.User{}, d.err
}

func (d failingDirectory) DepartmentExists(context.Context, uuid.UUID) (bool, error) {
	return false, d.err
}
