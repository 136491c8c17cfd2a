package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resumeapi/internal/database"
)

// UserStore 提供按用户名查找账号的能力。
// 查无此人返回 (nil, nil)：缺席是正常结果，不是错误。
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*database.User, error)
}

type gormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore 构造基于 GORM 的用户存储。
func NewGormUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) FindByUsername(ctx context.Context, username string) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Authenticate 校验用户名与密码，匹配时返回用户记录，否则返回 (nil, nil)。
// 用户不存在与密码不符刻意不做区分。
func Authenticate(ctx context.Context, store UserStore, username, password string) (*database.User, error) {
	user, err := store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}
