package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "appusers/internal/transport/http/response"
)

// RequireJSON rejects write requests whose body is not declared as
// JSON with 415, before any binding or mutation happens.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		ct := c.ContentType()
		if !strings.HasPrefix(ct, "application/json") {
			resp.Abort(c, http.StatusUnsupportedMediaType, "JSON body required")
			return
		}
		c.Next()
	}
}
