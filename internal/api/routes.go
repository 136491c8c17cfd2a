package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumeapi/internal/api/middleware"
	"resumeapi/internal/auth"
	"resumeapi/internal/resume"
)

// RegisterRoutes 注册 API 路由。
func RegisterRoutes(
	router *gin.Engine,
	users auth.UserStore,
	tokens *auth.TokenService,
	repo resume.Repository,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	loginRateLimitPerHour int,
) {
	authHandler := NewAuthHandler(users, tokens, redisClient, logger, loginRateLimitPerHour)
	resumeHandler := NewResumeHandler(repo, logger)
	authMiddleware := middleware.AuthMiddleware(tokens, users)

	router.POST("/token", authHandler.Login)

	resumeGroup := router.Group("/resumes")
	resumeGroup.Use(authMiddleware)
	{
		resumeGroup.GET("", resumeHandler.ListResumes)
		resumeGroup.POST("", resumeHandler.CreateResume)
		resumeGroup.GET("/:id", resumeHandler.GetResume)
		resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
		resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
	}
}
