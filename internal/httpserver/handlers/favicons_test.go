package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

func TestRefetchFavicons(t *testing.T) {
	d := deps.Deps{
		Logger:         logger.New("error", false),
		RefetchTrigger: make(chan struct{}, 1),
	}
	h := RefetchFavicons(d)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/favicons/refetch", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"message":"Favicon refetch triggered"}`, rec.Body.String())

	// the first trigger has not been consumed yet
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/favicons/refetch", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	<-d.RefetchTrigger
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/favicons/refetch", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestFavicons(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "def.svg"), []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))

	d := deps.Deps{FaviconDir: dir, FaviconPublicPrefix: "/favicons"}
	r := chi.NewRouter()
	r.Get("/favicons/*", Favicons(d).ServeHTTP)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/favicons/abc.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	rec = get("/favicons/def.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")

	assert.Equal(t, http.StatusNotFound, get("/favicons/").Code)
	assert.Equal(t, http.StatusNotFound, get("/favicons/.hidden").Code)
	assert.Equal(t, http.StatusNotFound, get("/favicons/missing.ico").Code)
}
