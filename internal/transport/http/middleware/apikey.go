package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "appusers/internal/transport/http/response"
)

const KeyHeader = "X-API-Key"

// APIKey gates read endpoints with a pre-shared key. The comparison is
// constant-time so the key cannot be probed byte by byte.
func APIKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(KeyHeader))
		if len(got) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			resp.Abort(c, http.StatusUnauthorized, "invalid API key")
			return
		}
		c.Next()
	}
}
