package router

import (
	"path"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/container"
	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/internal/router/modules"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// Deps is everything the route modules need.
type Deps struct {
	Places       *application.PlaceService
	Users        *application.UserService
	JWT          *helpers.JWTManager
	Redis        *redis.Client // nil disables rate limiting
	Logger       *logrus.Logger
	DebugMetrics bool

	// UploadDir is served as static files when images are kept on disk.
	UploadDir string
}

// Mount adds all modules to the registry.
func Mount(r *Registry, d Deps) {
	if d.UploadDir != "" && !path.IsAbs(d.UploadDir) {
		dir := path.Clean(d.UploadDir)
		if !strings.HasPrefix(dir, "..") {
			r.Engine.Static("/"+dir, dir)
		}
	}
	// softer per-IP ceiling for the whole API; private networks are exempt
	r.Use(middleware.RateLimit(d.Redis, d.Logger, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(d.Users, d.Logger), d.Redis, d.Logger))
	r.Add(modules.NewPlaceModule(handlers.NewPlaceHandler(d.Places, d.Logger), d.JWT, d.Redis, d.Logger))
	r.Add(modules.NewDebugModule(d.DebugMetrics))
}

// InitModules wires the modules from the container singletons.
// This function should be called once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	d := Deps{
		Places:       container.GetPlaceService(),
		Users:        container.GetUserService(),
		JWT:          container.GetJWT(),
		Logger:       container.GetLogger(),
		DebugMetrics: cfg.DebugMetricsEnabled,
	}
	if cfg.RateLimitEnabled {
		d.Redis = container.GetRedis()
	}
	if cfg.GCSBucket == "" {
		d.UploadDir = cfg.UploadDir
	}
	Mount(r, d)
}
