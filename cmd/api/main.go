package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumeapi/internal/api"
	"resumeapi/internal/auth"
	"resumeapi/internal/config"
	"resumeapi/internal/database"
	"resumeapi/internal/resume"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("api bootstrapping",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
		slog.String("sslmode", cfg.Database.SSLMode),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		logger.Error("init database failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection ready")

	if err := db.AutoMigrate(&database.User{}, &database.Resume{}); err != nil {
		logger.Error("auto migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrated")

	if err := seedUser(db, cfg.Auth.SeedUsername, cfg.Auth.SeedPassword); err != nil {
		logger.Error("seed user failed", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Error("init token service failed", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
	})

	users := auth.NewGormUserStore(db)
	repo := resume.NewGormRepository(db)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, users, tokens, repo, redisClient, logger, cfg.Auth.LoginRateLimitPerHour)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		logger.Error("api server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// seedUser 确保配置的登录账号存在，密码以 bcrypt 哈希落库。
func seedUser(db *gorm.DB, username, password string) error {
	var existing database.User
	switch err := db.Where("username = ?", username).First(&existing).Error; {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		return db.Create(&database.User{Username: username, PasswordHash: hashed}).Error
	default:
		return err
	}
}
