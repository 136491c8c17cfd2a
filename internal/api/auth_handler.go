package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumeapi/internal/api/middleware"
	"resumeapi/internal/auth"
)

// AuthHandler 处理登录换取访问令牌。
type AuthHandler struct {
	users                 auth.UserStore
	tokens                *auth.TokenService
	redis                 redisRateCounter
	logger                *slog.Logger
	loginRateLimitPerHour int
}

// NewAuthHandler 构造认证处理器。redisClient 可为 nil，此时不做速率限制。
func NewAuthHandler(users auth.UserStore, tokens *auth.TokenService, redisClient redis.UniversalClient, logger *slog.Logger, loginRateLimitPerHour int) *AuthHandler {
	h := &AuthHandler{
		users:                 users,
		tokens:                tokens,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
	}
	if redisClient != nil {
		h.redis = redisClient
	}
	return h
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login 校验表单提交的用户名与密码并签发访问令牌。
// 用户不存在与密码不符返回同一个 401，避免泄漏具体失败环节。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(
		slog.String("username", req.Username),
	)

	// 速率限制：每 IP+用户名 每小时 N 次。Redis 不可用时放行。
	if h.redis != nil && h.loginRateLimitPerHour > 0 {
		rateKey := "rate:login:" + c.ClientIP() + ":" + strings.ToLower(req.Username) + ":" + time.Now().UTC().Format("2006010215")
		count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.loginRateLimitPerHour) {
			logger.Info("login rate limited")
			TooManyRequests(c, "rate limit exceeded")
			return
		}
	}

	user, err := auth.Authenticate(ctx, h.users, req.Username, req.Password)
	if err != nil {
		logger.Error("login lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if user == nil {
		logger.Info("login failed: incorrect credentials")
		Unauthorized(c, "incorrect username or password")
		return
	}

	token, err := h.tokens.Issue(user.Username, 0)
	if err != nil {
		logger.Error("issue token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
