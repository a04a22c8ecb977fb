package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

type fixture struct {
	router *gin.Engine
	fs     *vfs.Namespace
	image  string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	fs := vfs.New(1<<20, vfs.WithMetrics(metrics))
	image := filepath.Join(t.TempDir(), "api.img")

	router := gin.New()
	router.Use(monitoring.Middleware(metrics))
	NewHandlers(fs, image, zap.NewNop()).Register(router)
	NewMetricsHandlers(metrics, reg).Register(router)
	return &fixture{router: router, fs: fs, image: image}
}

func (f *fixture) do(t *testing.T, method, target string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestWriteAndCat(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, "POST", "/fs/mkdir", PathRequest{Path: "/docs"})
	assert.Equal(t, http.StatusCreated, code)

	code, _ = f.do(t, "POST", "/fs/write", WriteRequest{Path: "/docs/a.txt", Content: "hello world"})
	assert.Equal(t, http.StatusOK, code)

	code, body := f.do(t, "GET", "/fs/cat?path=/docs/a.txt", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello world", body["content"])
	assert.Equal(t, false, body["compressed"])

	code, body = f.do(t, "GET", "/fs/ls?path=/docs", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"a.txt"}, body["entries"])
}

func TestErrorMapping(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.fs.Mkdir("/d"))

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{"missing file", "GET", "/fs/cat?path=/nope", nil, http.StatusNotFound},
		{"cat directory", "GET", "/fs/cat?path=/d", nil, http.StatusBadRequest},
		{"duplicate mkdir", "POST", "/fs/mkdir", PathRequest{Path: "/d"}, http.StatusConflict},
		{"mkdir without body", "POST", "/fs/mkdir", nil, http.StatusBadRequest},
		{"remove root", "DELETE", "/fs?path=/", nil, http.StatusBadRequest},
		{"remove without path", "DELETE", "/fs", nil, http.StatusBadRequest},
		{"bad regex", "GET", "/fs/search?name=(&regex=true", nil, http.StatusBadRequest},
		{"bad type", "GET", "/fs/search?type=x", nil, http.StatusBadRequest},
		{"bad size", "GET", "/fs/search?min=lots", nil, http.StatusBadRequest},
		{"too large", "POST", "/fs/write", WriteRequest{Path: "/big", Content: strings.Repeat("x", 2<<20)}, http.StatusInsufficientStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSearchAndTags(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.fs.Mkdir("/logs"))
	require.NoError(t, f.fs.Write("/logs/app.log", []byte(strings.Repeat("x", 200))))
	require.NoError(t, f.fs.Write("/logs/tiny.log", []byte("x")))

	code, body := f.do(t, "GET", "/fs/search?name=log&min=100", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"/logs/app.log"}, body["results"])

	code, _ = f.do(t, "POST", "/fs/tags", TagRequest{Path: "/logs/tiny.log", Tag: "keep"})
	assert.Equal(t, http.StatusOK, code)

	_, body = f.do(t, "GET", "/fs/tags?path=/logs/tiny.log", nil)
	assert.Equal(t, []any{"keep"}, body["tags"])

	_, body = f.do(t, "GET", "/fs/search?tag=keep&type=f", nil)
	assert.Equal(t, []any{"/logs/tiny.log"}, body["results"])

	code, _ = f.do(t, "DELETE", "/fs/tags?path=/logs/tiny.log&tag=keep", nil)
	assert.Equal(t, http.StatusOK, code)
	_, body = f.do(t, "GET", "/fs/tags", nil)
	assert.Equal(t, []any{}, body["tags"])

	code, _ = f.do(t, "GET", "/fs/tags?path=/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDiskAndSave(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.fs.Write("/f", []byte("persist me")))

	code, body := f.do(t, "GET", "/disk", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1<<20), body["total_bytes"])
	assert.Equal(t, "1.0 MiB", body["total"])

	code, _ = f.do(t, "POST", "/disk/save", nil)
	assert.Equal(t, http.StatusOK, code)

	loaded := vfs.New(0)
	require.NoError(t, loaded.LoadFromDisk(f.image))
	data, err := loaded.Cat("/f")
	require.NoError(t, err)
	assert.Equal(t, "persist me", string(data))

	code, _ = f.do(t, "DELETE", "/fs?path=/f", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsEndpoints(t *testing.T) {
	f := setup(t)
	f.do(t, "GET", "/health", nil)
	f.do(t, "GET", "/fs/cat?path=/missing", nil)

	code, body := f.do(t, "GET", "/metrics/json", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total_requests"])
	assert.Equal(t, float64(1), body["total_errors"])
	assert.Equal(t, float64(1), body["failed_operations"])

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vfs_operations_total")
	assert.Contains(t, w.Body.String(), "vfs_http_requests_total")
}
