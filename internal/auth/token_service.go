package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 统一表示令牌校验失败，不区分具体原因（签名、过期、格式）。
var ErrInvalidToken = errors.New("invalid token")

// TokenService 负责签发与校验 HS256 访问令牌。
// 密钥与默认有效期在构造时注入，实例不可变。
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

// TokenClaims 表示 JWT 中的业务字段，便于中间件读取用户信息。
type TokenClaims struct {
	jwt.RegisteredClaims
}

// NewTokenService 构造服务实例。secret 不能为空，defaultTTL 必须为正。
func NewTokenService(secret string, defaultTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if defaultTTL <= 0 {
		return nil, errors.New("default token ttl must be positive")
	}
	return &TokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}, nil
}

// Issue 为指定主体签发访问令牌。ttl 为 0 时使用默认有效期。
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 解析并验证令牌，成功时返回 sub 声明。
// 任何失败（签名不符、过期、缺失 sub、格式错误）都返回 ErrInvalidToken，
// 不向调用方泄漏失败的具体环节。
func (s *TokenService) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// DefaultTTL 暴露默认令牌有效期。
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}
