package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"qmate-api/internal/model"
	"qmate-api/internal/security"
)

type tokenValidator interface {
	Validate(token string) (security.Claims, error)
}

type identityResolver interface {
	GetCurrentUser(ctx context.Context, id uuid.UUID) (model.User, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

// AuthMiddleware is the authorization gate in front of protected routes. It
// keeps no state between requests.
type AuthMiddleware struct {
	validator tokenValidator
	resolver  identityResolver
}

func NewAuthMiddleware(validator tokenValidator, resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, resolver: resolver}
}

// Authenticate runs the gate pipeline for one request: extract the bearer
// credential, validate it, require an access token, parse the subject and
// resolve the identity. The first failing step ends the pipeline.
func (m *AuthMiddleware) Authenticate(r *http.Request) (model.User, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return model.User{}, model.ErrMissingCredentials
	}

	claims, err := m.validator.Validate(token)
	if err != nil {
		return model.User{}, err
	}

	if claims.Kind != security.TokenAccess {
		return model.User{}, model.ErrWrongTokenKind
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return model.User{}, model.ErrMalformedSubject
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return model.User{}, model.ErrMalformedSubject
	}

	return m.resolver.GetCurrentUser(r.Context(), userID)
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Authenticate(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthError(w, model.ErrMissingCredentials)
				return
			}

			if _, exists := roleSet[user.Role]; !exists {
				writeAuthError(w, model.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	body := model.APIError{Code: "UNAUTHORIZED", Message: "Could not validate credentials"}

	switch {
	case errors.Is(err, model.ErrMissingCredentials):
		body.Message = "Missing or invalid authorization header"
	case errors.Is(err, model.ErrWrongTokenKind):
		body.Message = "Token is not an access token"
	case errors.Is(err, model.ErrTokenInvalid):
		body.Message = "Invalid or expired token"
	case errors.Is(err, model.ErrMalformedSubject):
		body.Message = "Invalid token payload"
	case errors.Is(err, model.ErrIdentityNotFound):
		body.Message = "User not found"
	case errors.Is(err, model.ErrAccountInactive):
		status = http.StatusForbidden
		body = model.APIError{Code: "ACCOUNT_INACTIVE", Message: "User account is inactive"}
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body = model.APIError{Code: "FORBIDDEN", Message: "Insufficient permissions"}
	default:
		slog.Error("authorization gate failed", "error", err)
		status = http.StatusInternalServerError
		body = model.APIError{Code: "INTERNAL_ERROR", Message: "Unexpected server error"}
	}

	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	_ = jsonEncode(w, model.APIResponse{Success: false, Error: &body})
}
