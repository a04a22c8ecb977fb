package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/logging"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Disk.Image = filepath.Join(t.TempDir(), "disk.bin")
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestServerLifecycle(t *testing.T) {
	cfg := testConfig(t)
	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, srv.Shutdown(context.Background()))
	_, err = os.Stat(cfg.Disk.Image)
	assert.NoError(t, err, "autosave should write the image")
}

func TestServerRejectsCorruptImage(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Disk.Image, []byte("not an image"), 0o644))

	_, err := NewServer(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to load image")
}
