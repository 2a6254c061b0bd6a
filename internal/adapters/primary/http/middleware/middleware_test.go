package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(headerRequestID))
		assert.Equal(t, w.Header().Get(headerRequestID), w.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(headerRequestID, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc", w.Header().Get(headerRequestID))
		assert.Equal(t, "abc", w.Body.String())
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(headerRequestID, "bad id with spaces")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		id := w.Header().Get(headerRequestID)
		assert.NotEqual(t, "bad id with spaces", id)
		assert.Len(t, id, 36)
	})
}
