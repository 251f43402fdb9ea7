package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"qmate-api/internal/metrics"
	"qmate-api/internal/middleware"
	"qmate-api/internal/model"
	"qmate-api/internal/service"
	"qmate-api/pkg/apierror"
)

type authService interface {
	Signup(ctx context.Context, in service.SignupInput) (model.User, error)
	Login(ctx context.Context, email string, password string) (model.User, model.TokenPair, error)
	Refresh(refreshToken string) (model.TokenPair, error)
}

type authObserver interface {
	ObserveAuth(operation, outcome string)
}

type AuthHandler struct {
	service  authService
	observer authObserver
}

func NewAuthHandler(service authService, observer authObserver) *AuthHandler {
	return &AuthHandler{service: service, observer: observer}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	role, err := model.ParseRole(payload.Role)
	if err != nil {
		writeError(w, apierror.Validation("role: must be one of: student agent admin"))
		return
	}

	var departmentID *uuid.UUID
	if payload.DepartmentID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*payload.DepartmentID))
		if err != nil {
			writeError(w, apierror.Validation("department_id: must be a valid UUID"))
			return
		}
		departmentID = &id
	}

	user, err := h.service.Signup(r.Context(), service.SignupInput{
		Email:        payload.Email,
		Password:     payload.Password,
		Name:         payload.Name,
		Role:         role,
		DepartmentID: departmentID,
	})
	h.observe("signup", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user.Public())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	h.observe("login", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.LoginResponse{TokenPair: tokens, User: user.Public()})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Refresh(strings.TrimSpace(payload.RefreshToken))
	h.observe("refresh", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	writeSuccess(w, http.StatusOK, user.Public())
}

func (h *AuthHandler) observe(operation string, err error) {
	if h.observer == nil {
		return
	}

	var apiErr *apierror.APIError
	switch {
	case err == nil:
		h.observer.ObserveAuth(operation, metrics.OutcomeSuccess)
	case errors.As(err, &apiErr), isClientError(err):
		h.observer.ObserveAuth(operation, metrics.OutcomeFailure)
	default:
		h.observer.ObserveAuth(operation, metrics.OutcomeError)
	}
}

func isClientError(err error) bool {
	for _, target := range []error{
		model.ErrDuplicateIdentity,
		model.ErrUnknownDepartment,
		model.ErrInvalidCredentials,
		model.ErrAccountInactive,
		model.ErrTokenInvalid,
		model.ErrWrongTokenKind,
		model.ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
