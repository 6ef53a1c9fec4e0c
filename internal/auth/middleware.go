package auth

import (
	"net/http"
	"strings"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates bearer tokens and stores the caller's identity
// in the gin context.
func (s *Service) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "missing authorization header", nil))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "invalid authorization header format", nil))
			c.Abort()
			return
		}

		claims, err := s.jwtHandler.ValidateAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "invalid or expired token", nil))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// CallerID extracts the authenticated user id from the gin context.
func CallerID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}
