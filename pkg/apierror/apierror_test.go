package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	require.Equal(t, "BAD_REQUEST: invalid JSON body", BadRequest("invalid JSON body", "").Error())
	require.Equal(t, "VALIDATION_ERROR: request validation failed (email: is required)", Validation("email: is required").Error())

	var nilErr *APIError
	require.Empty(t, nilErr.Error())
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("decode: %w", Unauthorized("authentication required"))

	var apiErr *APIError
	require.True(t, errors.As(wrapped, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	require.Equal(t, "UNAUTHORIZED", apiErr.Code)
}
