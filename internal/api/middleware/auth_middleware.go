package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeapi/internal/auth"
	"resumeapi/internal/database"
)

const currentUserKey = "currentUser"

// abortUnauthorized 统一返回 401，并带上 Bearer 认证质询头。
// 刻意不区分失败环节（缺头、坏令牌、过期、主体不存在）。
func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验访问令牌，解析其主体并把用户记录注入上下文。
// 令牌有效但主体已不可解析时同样拒绝。
func AuthMiddleware(tokens *auth.TokenService, users auth.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		subject, err := tokens.Verify(rawToken)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil {
			abortUnauthorized(c)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser 从上下文取出认证后的用户记录。
func CurrentUser(c *gin.Context) (*database.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*database.User)
	return user, ok
}
