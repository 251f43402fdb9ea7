package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", false)

	log.Info("login", "user_id", "42", "password", "hunter22", "refresh_token", "abc.def.ghi")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "login", entry["msg"])
	require.Equal(t, "42", entry["user_id"])
	require.Equal(t, redacted, entry["password"])
	require.Equal(t, redacted, entry["refresh_token"])
}

func TestNewDevelopmentRedacts(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", true)

	log.With("Authorization", "Bearer abc").Debug("request", "secret", "s3cr3t", "path", "/api/v1/auth/me")

	out := buf.String()
	require.Contains(t, out, "request")
	require.Contains(t, out, "/api/v1/auth/me")
	require.NotContains(t, out, "s3cr3t")
	require.NotContains(t, out, "Bearer abc")
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "production", false).Debug("hidden")
	require.Zero(t, buf.Len())

	New(&buf, "production", true).Debug("shown")
	require.NotZero(t, buf.Len())
}

func TestRedactLeavesOtherKeys(t *testing.T) {
	a := Redact(nil, slog.String("email", "a@example.com"))
	require.Equal(t, "a@example.com", a.Value.String())
}
