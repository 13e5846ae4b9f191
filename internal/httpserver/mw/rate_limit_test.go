package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerMin: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/import/bookmarks", nil)
		req.RemoteAddr = remoteAddr
		if userID != 0 {
			req = req.WithContext(WithUserID(req.Context(), userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1:1000", 0).Code)

	rec := do("1.1.1.1:1000", 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("1.1.1.1:1000", 0)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, do("2.2.2.2:1000", 0).Code)

	// authenticated requests are limited per user, not per IP
	assert.Equal(t, http.StatusOK, do("1.1.1.1:1000", 42).Code)
	assert.Equal(t, http.StatusOK, do("3.3.3.3:1000", 42).Code)
	assert.Equal(t, http.StatusTooManyRequests, do("4.4.4.4:1000", 42).Code)
}
