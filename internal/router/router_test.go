package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/container"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

func newEngine(t *testing.T, limit int, rdb *redis.Client, debug bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	cfg := &config.Config{
		EmailPattern:        `[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		PasswordPattern:     `.{6,}`,
		PasswordMessage:     "password must be at least 6 characters",
		JWTSecret:           strings.Repeat("k", config.MinJWTSecretBytes),
		JWTExpiration:       time.Hour,
		SignUpRateLimit:     limit,
		DebugMetricsEnabled: debug,
	}
	c, err := container.NewCore(cfg, helpers.NewDiscardLogger(), memory.NewUserRepository())
	require.NoError(t, err)
	c.Redis = rdb

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

func signUp(r http.Handler, email string) *httptest.ResponseRecorder {
	body := `{"name":"Juan","email":"` + email + `","password":"hunter2","phones":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/sign-up", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesRegistered(t *testing.T) {
	r := newEngine(t, 0, nil, false)

	w := signUp(r, "juan@rodriguez.org")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignUpIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	r := newEngine(t, 2, rdb, false)

	assert.Equal(t, http.StatusCreated, signUp(r, "a@example.com").Code)
	assert.Equal(t, http.StatusCreated, signUp(r, "b@example.com").Code)
	assert.Equal(t, http.StatusTooManyRequests, signUp(r, "c@example.com").Code)
}

func TestDebugVarsExposeCounters(t *testing.T) {
	r := newEngine(t, 0, nil, true)
	require.Equal(t, http.StatusCreated, signUp(r, "vars@example.com").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	assert.Contains(t, vars, "registrations_total")
	assert.Contains(t, vars, "registrations_rejected")
}
