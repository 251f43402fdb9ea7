package model

import "errors"

var (
	// Directory level. Absence is reported with ErrUserNotFound and translated
	// by the auth service into the domain kinds below.
	ErrUserNotFound       = errors.New("user not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentConflict = errors.New("department name or slug already exists")

	// Authentication domain
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrUnknownDepartment  = errors.New("department does not exist")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountInactive    = errors.New("user account is inactive")
	ErrIdentityNotFound   = errors.New("identity not found")

	// Tokens
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrWrongTokenKind = errors.New("wrong token type")

	// Authorization gate
	ErrMissingCredentials = errors.New("missing bearer credentials")
	ErrMalformedSubject   = errors.New("malformed token subject")
	ErrForbidden          = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
