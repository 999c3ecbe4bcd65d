package middleware

import (
	"net/http"

	"catalog-console/internal/access"
	"catalog-console/internal/models"

	"github.com/gin-gonic/gin"
)

const RoleKey = "role"

// RequireAuthenticated rejects requests while no operator is signed in.
func RequireAuthenticated(session *access.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Authenticated() {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "not signed in",
				Message: "sign in at /console/login first",
			})
			c.Abort()
			return
		}

		c.Set(RoleKey, string(session.Role()))
		c.Next()
	}
}

// RequirePermission rejects requests the signed-in role may not perform.
func RequirePermission(gate *access.Gate, p access.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.HasPermission(p) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "permission denied",
				Message: "role lacks " + string(p),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
