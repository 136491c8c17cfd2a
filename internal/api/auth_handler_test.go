package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumeapi/internal/auth"
	"resumeapi/internal/database"
	"resumeapi/internal/resume"
)

type fakeUserStore struct {
	users map[string]*database.User
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*database.User, error) {
	return s.users[username], nil
}

func newTestUserStore(t *testing.T) auth.UserStore {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &fakeUserStore{users: map[string]*database.User{
		"admin": {ID: 1, Username: "admin", PasswordHash: hash},
	}}
}

// newTestRouter 组装完整路由：内存仓库、假用户存储、真实令牌服务、无 Redis。
func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	router := gin.New()
	RegisterRoutes(router, newTestUserStore(t), tokens, resume.NewMemoryRepository(), nil, nil, 0)
	return router, tokens
}

func postLogin(router *gin.Engine, username, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginReturnsVerifiableToken(t *testing.T) {
	router, tokens := newTestRouter(t)

	w := postLogin(router, "admin", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", resp.TokenType)
	}

	subject, err := tokens.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if subject != "admin" {
		t.Fatalf("subject = %q, want admin", subject)
	}
}

func TestLoginWrongPasswordAndUnknownUserCollapse(t *testing.T) {
	router, _ := newTestRouter(t)

	wrong := postLogin(router, "admin", "nope")
	unknown := postLogin(router, "ghost", "secret")

	for name, w := range map[string]*httptest.ResponseRecorder{"wrong password": wrong, "unknown user": unknown} {
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, w.Code)
		}
	}
	// 两种失败必须对外不可区分
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestLoginMissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postLogin(router, "admin", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// fakeRateCounter 以内存计数模拟 Redis 的 INCR/EXPIRE，可注入故障。
type fakeRateCounter struct {
	counts  map[string]int64
	expired []string
	failing bool
}

func newFakeRateCounter() *fakeRateCounter {
	return &fakeRateCounter{counts: map[string]int64{}}
}

func (f *fakeRateCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.failing {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRateCounter) Expire(ctx context.Context, key string, _ time.Duration) *redis.BoolCmd {
	f.expired = append(f.expired, key)
	return redis.NewBoolResult(true, nil)
}

func newRateLimitedRouter(t *testing.T, counter redisRateCounter, limitPerHour int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	h := &AuthHandler{
		users:                 newTestUserStore(t),
		tokens:                tokens,
		redis:                 counter,
		loginRateLimitPerHour: limitPerHour,
	}
	router := gin.New()
	router.POST("/token", h.Login)
	return router
}

func TestLoginRateLimitExceeded(t *testing.T) {
	counter := newFakeRateCounter()
	router := newRateLimitedRouter(t, counter, 2)

	// 限额内的失败尝试保持 401
	for i := 0; i < 2; i++ {
		if w := postLogin(router, "admin", "nope"); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, w.Code)
		}
	}

	// 超过限额后，即使口令正确也拒绝
	w := postLogin(router, "admin", "secret")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429, body = %s", w.Code, w.Body.String())
	}

	// 计数键首次创建时设置了过期
	if len(counter.expired) != 1 {
		t.Fatalf("expired keys = %v, want exactly one", counter.expired)
	}
}

func TestLoginRateLimitIsPerUsername(t *testing.T) {
	counter := newFakeRateCounter()
	router := newRateLimitedRouter(t, counter, 1)

	if w := postLogin(router, "admin", "nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt: status = %d, want 401", w.Code)
	}
	if w := postLogin(router, "admin", "nope"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt: status = %d, want 429", w.Code)
	}

	// 另一个用户名不受影响
	if w := postLogin(router, "ghost", "nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("other username: status = %d, want 401", w.Code)
	}
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	counter := newFakeRateCounter()
	counter.failing = true
	router := newRateLimitedRouter(t, counter, 1)

	// Redis 不可用时放行，正确口令仍可登录
	w := postLogin(router, "admin", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
}
