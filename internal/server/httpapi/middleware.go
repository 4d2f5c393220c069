package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"magiclink/internal/server/auth"
)

// ctxUserID is the gin context key under which the middleware stores the
// authenticated user id.
const ctxUserID = "UserID"

// AuthMiddleware requires a valid bearer access token and stores its subject
// in the request context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			newErrorResponse(c, http.StatusUnauthorized, "empty authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			newErrorResponse(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := auth.ParseAccessToken(parts[1], h.accessSecret)
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ctxUserID, claims.Subject)

		c.Next()
	}
}
