package middleware

import (
	"net/http"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/utils"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthMiddleware validates the bearer token issued by the account
// service and requires the admin role. Token issuance and revocation live in
// that service; only verification happens here.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			logger.Log.Warn("unauthorized admin access attempt", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		if userIDFloat, ok := claims["user_id"].(float64); ok {
			c.Set("admin_id", uint(userIDFloat))
		}

		c.Next()
	}
}
