package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

func captureEnumPatch(t *testing.T) **EnumPatchConfig {
	t.Helper()
	var captured *EnumPatchConfig
	enumPatchRunner = func(ctx context.Context, cfg *EnumPatchConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { enumPatchRunner = runEnumPatch })
	return &captured
}

func TestEnumPatchConfigDefaults(t *testing.T) {
	t.Setenv(EnvEnumBaseURL, "")
	t.Setenv(EnvEnumToken, "")
	captured := captureEnumPatch(t)

	_, err := execute(t, "enum-patch", "--input", "spec.yaml", "--base-url", "https://api.example.com")
	require.NoError(t, err)
	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "enum-patches.json", cfg.Out)
	assert.Equal(t, "auto", cfg.NamingStrategy)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10000, cfg.TimeoutMs)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Empty(t, cfg.Token)
}

func TestEnumPatchConfigFromEnvFile(t *testing.T) {
	t.Setenv(EnvEnumBaseURL, "https://from-process.example.com")
	t.Setenv(EnvEnumToken, "process-token")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvEnumBaseURL+"=https://from-file.example.com\n"), 0o600))
	captured := captureEnumPatch(t)

	_, err := execute(t, "enum-patch", "--input", "spec.yaml", "--env-file", envFile)
	require.NoError(t, err)
	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "https://from-file.example.com", cfg.BaseURL)
	assert.Equal(t, "process-token", cfg.Token, "falls back to the process environment")

	_, err = execute(t, "enum-patch", "--input", "spec.yaml", "--env-file", envFile, "--base-url", "https://flag.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", (*captured).BaseURL)
}

func TestEnumPatchConfigValidation(t *testing.T) {
	t.Setenv(EnvEnumBaseURL, "")
	captureEnumPatch(t)

	cases := map[string][]string{
		"base url":   {"enum-patch", "--input", "spec.yaml"},
		"strategy":   {"enum-patch", "--input", "spec.yaml", "--base-url", "http://x", "--naming-strategy", "fancy"},
		"retries":    {"enum-patch", "--input", "spec.yaml", "--base-url", "http://x", "--max-retries", "0"},
		"timeout":    {"enum-patch", "--input", "spec.yaml", "--base-url", "http://x", "--timeout-ms", "-1"},
		"env file":   {"enum-patch", "--input", "spec.yaml", "--env-file", filepath.Join(t.TempDir(), "missing.env")},
		"rate limit": {"enum-patch", "--input", "spec.yaml", "--base-url", "http://x", "--rate-limit", "-2"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
		})
	}
}

func TestEnumPatch_DryRunPrintsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Data":[{"Key":1,"Value":"Owner"}]}`))
	}))
	defer srv.Close()

	specPath := writeSpec(t)
	out, err := execute(t, "enum-patch", "--input", specPath, "--base-url", srv.URL, "--dry-run", "--naming-strategy", "none")
	require.NoError(t, err)
	assert.Contains(t, out, `"schema_version": "1"`)
	assert.Contains(t, out, `"enum_name": "Role"`)
	assert.Contains(t, out, `"comment": "Owner"`)
	assert.NotContains(t, out, "suggested_name")
}

func TestEnumPatch_FetchFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	specPath := writeSpec(t)
	out := filepath.Join(t.TempDir(), "enums.json")
	_, err := execute(t, "enum-patch", "--input", specPath, "--base-url", srv.URL, "--out", out)
	require.Error(t, err)
	assert.Equal(t, errs.NetworkError, errs.CodeOf(err))
	assert.Contains(t, Render(err), "hint:")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
