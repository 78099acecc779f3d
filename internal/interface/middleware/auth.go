package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lostudea/lostudea-api/pkg/helpers"
	"github.com/lostudea/lostudea-api/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxIsAdminKey = "isAdmin"
	CtxRoleKey    = "userRole"
)

// Auth validates the access token cookie and ensures an active session
// exists in Redis. It sets userID, userRole, and isAdmin in the Gin
// context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, data["user_id"])
		c.Set(CtxRoleKey, data["role"])
		c.Set(CtxIsAdminKey, data["is_admin"] == "1" || data["is_admin"] == "true")
		c.Next()
	}
}

// RequireAdmin gates routes behind the boolean admin flag. Must run after
// Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdminKey) {
			response.Error[any](c, http.StatusForbidden, "admin only", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
