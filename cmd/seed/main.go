package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/infrastructure/geocode"
	"github.com/oksasatya/go-places-api/internal/infrastructure/imagestore"
	pginfra "github.com/oksasatya/go-places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// Seeds a demo user with one place through the application services, so
// the same invariants hold as for API-created data.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	if !cfg.UsesPostgres() {
		log.Fatal("seeding needs STORE_DRIVER=postgres; the memory store does not outlive the process")
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	store := pginfra.NewStore(pool)

	images, err := imagestore.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}
	jwt := helpers.NewJWTManager(cfg.JWTKey, cfg.JWTTTL)
	users := application.NewUserService(store, jwt, helpers.NewPasswordHasher(cfg.BcryptCost), images, nil, logger, cfg.AppURL)
	places := application.NewPlaceService(store, images, geocode.NewStatic(), nil, logger)

	email := "demo@places.test"
	password := "password123"

	res, err := users.Register(ctx, application.RegisterInput{Name: "Demo User", Email: email, Password: password, Image: placeholder()})
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		if res, err = users.Login(ctx, email, password); err != nil {
			log.Fatalf("demo user exists but login failed: %v", err)
		}
		fmt.Printf("demo user already present: id=%s\n", res.User.ID)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", res.User.ID, email, password)
	}

	if len(res.User.Places) > 0 {
		fmt.Println("demo place already present")
		return
	}
	p, err := places.Create(ctx, res.User.ID, application.CreatePlaceInput{
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world!",
		Address:     "20 W 34th St, New York, NY 10001",
		Image:       placeholder(),
	})
	if err != nil {
		log.Fatalf("failed to seed place: %v", err)
	}
	places.Wait()
	fmt.Printf("seeded place: id=%s title=%q\n", p.ID, p.Title)
}

// placeholder is a 1x1 PNG.
func placeholder() *application.Upload {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 85, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return &application.Upload{Filename: "placeholder.png", ContentType: "image/png", Body: &buf}
}
