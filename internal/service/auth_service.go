package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"qmate-api/internal/model"
	"qmate-api/internal/security"
)

// UserDirectory is the persistence boundary for identities. Implementations
// report absence with model.ErrUserNotFound.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.User, error)
	Create(ctx context.Context, user model.NewUser) (model.User, error)
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, digest string) (bool, error)
}

type TokenCodec interface {
	Issue(claims security.Claims, kind security.TokenKind, ttl time.Duration) (string, error)
	Validate(token string) (security.Claims, error)
}

type AuthConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type SignupInput struct {
	Email        string
	Password     string
	Name         string
	Role         model.Role
	DepartmentID *uuid.UUID
}

type AuthService struct {
	directory  UserDirectory
	hasher     PasswordHasher
	codec      TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	// decoyDigest is compared against when the email is unknown so that both
	// login failures cost one hash comparison.
	decoyDigest string
}

func NewAuthService(cfg AuthConfig, directory UserDirectory, hasher PasswordHasher, codec TokenCodec) (*AuthService, error) {
	if directory == nil || hasher == nil || codec == nil {
		return nil, errors.New("auth service requires a directory, hasher and codec")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare decoy digest: %w", err)
	}

	return &AuthService{
		directory:   directory,
		hasher:      hasher,
		codec:       codec,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		decoyDigest: decoy,
	}, nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.User, error) {
	email := model.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return model.User{}, fmt.Errorf("%w: email and name are required", model.ErrInvalidInput)
	}

	role := in.Role
	if role == "" {
		role = model.RoleStudent
	}
	if !role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}

	_, err := s.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.User{}, model.ErrDuplicateIdentity
	case !errors.Is(err, model.ErrUserNotFound):
		return model.User{}, fmt.Errorf("signup lookup: %w", err)
	}

	if in.DepartmentID != nil {
		exists, err := s.directory.DepartmentExists(ctx, *in.DepartmentID)
		if err != nil {
			return model.User{}, fmt.Errorf("signup department lookup: %w", err)
		}
		if !exists {
			return model.User{}, model.ErrUnknownDepartment
		}
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.directory.Create(ctx, model.NewUser{
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		Role:         role,
		DepartmentID: in.DepartmentID,
	})
	if err != nil {
		return model.User{}, err
	}

	slog.Info("user signed up", "user_id", user.ID.String(), "role", string(user.Role))
	return user, nil
}

// Login never tells the caller whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.User, model.TokenPair, error) {
	user, err := s.directory.FindByEmail(ctx, model.NormalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		_, _ = s.hasher.Verify(password, s.decoyDigest)
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, model.TokenPair{}, fmt.Errorf("login lookup: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password digest is unreadable", "user_id", user.ID.String(), "error", err)
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}
	if !ok {
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.User{}, model.TokenPair{}, model.ErrAccountInactive
	}

	pair, err := s.issuePair(claimsFor(user))
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh rotates both tokens from the claims of a valid refresh token. The
// presented token is not revoked and stays usable until it expires.
func (s *AuthService) Refresh(refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Validate(strings.TrimSpace(refreshToken))
	if err != nil {
		return model.TokenPair{}, err
	}

	if claims.Kind != security.TokenRefresh {
		return model.TokenPair{}, model.ErrWrongTokenKind
	}

	return s.issuePair(security.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	})
}

func (s *AuthService) GetCurrentUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.directory.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrIdentityNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("resolve current user: %w", err)
	}

	if !user.IsActive {
		return model.User{}, model.ErrAccountInactive
	}

	return user, nil
}

func (s *AuthService) issuePair(claims security.Claims) (model.TokenPair, error) {
	access, err := s.codec.Issue(claims, security.TokenAccess, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := s.codec.Issue(claims, security.TokenRefresh, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func claimsFor(user model.User) security.Claims {
	return security.Claims{
		Subject: user.ID.String(),
		Email:   user.Email,
		Role:    string(user.Role),
	}
}
