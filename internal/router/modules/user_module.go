package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
)

// UserModule wires the registration routes under the given group (usually /api):
//
//	POST /users/sign-up  rate limited per client IP
//	GET  /users/
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client

	// SignUpPerMinute is the sign-up budget per client IP; 0 disables limiting.
	SignUpPerMinute int
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, signUpPerMinute int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, SignUpPerMinute: signUpPerMinute}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	signUpLimiter := middleware.RateLimit(m.Redis, m.SignUpPerMinute, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.POST("/sign-up", signUpLimiter, m.Handler.SignUp)
	users.GET("/", m.Handler.List)
}
