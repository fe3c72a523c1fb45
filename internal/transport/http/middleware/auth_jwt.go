package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"appusers/internal/domain"
	resp "appusers/internal/transport/http/response"
)

const keyCurrentUser = "currentUser"

// TokenResolver maps a bearer token to the live user record.
type TokenResolver interface {
	ResolveToken(token string) (*domain.User, error)
}

// Bearer gates write endpoints. The resolved user is stored on the
// context for self-or-admin checks in the handlers. requireAdmin
// additionally demands the admin flag.
func Bearer(r TokenResolver, requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		u, err := r.ResolveToken(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Error(c, err)
			return
		}
		if requireAdmin && !u.Admin {
			resp.Abort(c, http.StatusUnauthorized, "admin privilege required")
			return
		}
		c.Set(keyCurrentUser, u)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by Bearer, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(keyCurrentUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
