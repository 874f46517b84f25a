package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
)

// UserModule wires user routes, all public:
// GET /users, POST /users/signup, POST /users/login
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, m.Logger, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	loginLimiter := middleware.RateLimit(m.Redis, m.Logger, 20, time.Minute, middleware.KeyByIPAndPath(), nil)  // 20 req/min per IP

	users := rg.Group("/users")
	users.GET("", m.Handler.List)
	users.POST("/signup", signupLimiter, m.Handler.Signup)
	users.POST("/login", loginLimiter, m.Handler.Login)
}
