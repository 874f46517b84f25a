package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// PlaceModule wires place routes.
// Public: GET /places/search, GET /places/user/:uid, GET /places/:pid
// Protected: POST /places, PATCH /places/:pid, DELETE /places/delete/:pid
type PlaceModule struct {
	Handler *handlers.PlaceHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client // nil disables rate limiting
	Logger  *logrus.Logger
}

func NewPlaceModule(h *handlers.PlaceHandler, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *PlaceModule {
	return &PlaceModule{Handler: h, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *PlaceModule) Register(rg *gin.RouterGroup) {
	places := rg.Group("/places")
	places.GET("/search", middleware.RateLimit(m.Redis, m.Logger, 120, time.Minute, middleware.KeyByIPAndPath(), nil), m.Handler.Search)
	places.GET("/user/:uid", m.Handler.ListByUser)
	places.GET("/:pid", m.Handler.GetByID)

	auth := places.Group("")
	auth.Use(middleware.Auth(m.JWT, m.Logger))
	auth.Use(middleware.RateLimit(m.Redis, m.Logger, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Create)
		auth.PATCH("/:pid", m.Handler.Update)
		auth.DELETE("/delete/:pid", m.Handler.Delete)
	}
}
