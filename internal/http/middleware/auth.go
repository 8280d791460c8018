// README: Bearer token middleware; resolves the caller's id and role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taxihub/internal/types"
)

const (
	callerIDKey   = "caller_id"
	callerRoleKey = "caller_role"
)

// TokenVerifier checks a bearer token and returns the caller's identity.
// Satisfied by auth.Manager and by stubs in tests.
type TokenVerifier interface {
	Verify(token string) (types.ID, types.Role, error)
}

func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, role, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerIDKey, id)
		c.Set(callerRoleKey, role)
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not in the allowed set.
// The engines re-check roles against persisted records; this gate only keeps
// obviously wrong traffic out of the handlers.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// CallerID returns the authenticated caller's id, or "" outside Auth.
func CallerID(c *gin.Context) types.ID {
	if v, ok := c.Get(callerIDKey); ok {
		if id, ok := v.(types.ID); ok {
			return id
		}
	}
	return ""
}

// CallerRole returns the authenticated caller's token role, or "" outside Auth.
func CallerRole(c *gin.Context) types.Role {
	if v, ok := c.Get(callerRoleKey); ok {
		if role, ok := v.(types.Role); ok {
			return role
		}
	}
	return ""
}
