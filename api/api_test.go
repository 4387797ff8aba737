package api

import (
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrlab/qrgen/fixture"
	"github.com/qrlab/qrgen/qr"
)

func newTestRouter(t *testing.T) (http.Handler, *Server, string) {
	t.Helper()

	dir := t.TempDir()
	man, err := fixture.OpenManifest(dir)
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := &Server{
		Gen:       fixture.NewGenerator(dir, man, io.Discard, log),
		Manifest:  man,
		OutputDir: dir,
		Defaults:  qr.Config{Level: qr.LevelM, ModuleSize: 10, Border: 4, Fit: true},
		Log:       log,
		Version:   "test",
		Started:   time.Now(),
	}
	return NewRouter(s), s, dir
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string `json:"status"`
		Artifacts int    `json:"artifacts"`
		Version   string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 0, body.Artifacts)
	assert.Equal(t, "test", body.Version)
}

func TestGalleryPageServesHTML(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Fixture Gallery")
}

func TestGenerateAndFetchFixture(t *testing.T) {
	t.Parallel()

	router, _, dir := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/generate",
		`{"payload":"api hello","name":"api.png","module_size":2,"border":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var art fixture.Artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &art))
	assert.Equal(t, "api.png", art.Name)
	assert.Equal(t, "api hello", art.Payload)
	assert.NotEmpty(t, art.ID)

	_, err := os.Stat(filepath.Join(dir, "api.png"))
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/fixtures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var arts []fixture.Artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &arts))
	require.Len(t, arts, 1)
	assert.Equal(t, art.ID, arts[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/fixtures/api.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/png")
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, art.Width, img.Bounds().Dx())
}

func TestGenerateRejectsMissingPayload(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRejectsOversizedExactRequest(t *testing.T) {
	t.Parallel()

	router, _, dir := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/generate",
		`{"payload":"`+strings.Repeat("x", 20)+`","version":1,"level":"L","exact":true,"name":"big.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := os.Stat(filepath.Join(dir, "big.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateRejectsBadNames(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	for _, name := range []string{"../evil.png", "sub/dir.png", "note.txt"} {
		rec := doJSON(t, router, http.MethodPost, "/generate",
			`{"payload":"x","name":"`+name+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestGetFixtureUnknown(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/fixtures/missing.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQRImageEndpoint(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/qr?payload=hello&size=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/png")

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	// Version 1 plus the default border is 29 modules; 200 px fit six each.
	assert.Equal(t, 174, img.Bounds().Dx())
	assert.Equal(t, 174, img.Bounds().Dy())

	rec = doJSON(t, router, http.MethodGet, "/qr", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQRImageClampsOversizedQueries(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/qr?payload=hello&size=100&border=3000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	// The border clamps to 32 modules: (21 + 2*32) * 1 px.
	assert.Equal(t, 85, img.Bounds().Dx())
	assert.Equal(t, 85, img.Bounds().Dy())

	rec = doJSON(t, router, http.MethodGet, "/qr?payload=hello&size=999999&border=999999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err = png.Decode(rec.Body)
	require.NoError(t, err)
	// The size clamps to 2048: 85 modules at 24 px each.
	assert.Equal(t, 2040, img.Bounds().Dx())
	assert.Equal(t, 2040, img.Bounds().Dy())
}

func TestGenerateRejectsOversizedParameters(t *testing.T) {
	t.Parallel()

	router, _, dir := newTestRouter(t)

	for _, body := range []string{
		`{"payload":"x","name":"huge.png","module_size":1000}`,
		`{"payload":"x","name":"huge.png","border":1000}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/generate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	_, err := os.Stat(filepath.Join(dir, "huge.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/fixtures", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
