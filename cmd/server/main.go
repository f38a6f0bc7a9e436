package main

import (
	"context"
	"log"
	"net/http"

	_ "agrimap/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"agrimap/internal/auth"
	"agrimap/internal/cache"
	"agrimap/internal/config"
	"agrimap/internal/db"
	"agrimap/internal/handler"
	"agrimap/internal/media"
	"agrimap/internal/model"
	"agrimap/internal/repository"
	"agrimap/internal/router"
	"agrimap/internal/service"
)

// @title Agrimap Survey API
// @version 1.0
// @description Land/area survey backend: registration, token auth, area aggregate submission and retrieval.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Area{},
		&model.Coordinate{},
		&model.Image{},
		&model.Topography{},
		&model.SoilType{},
		&model.Farm{},
		&model.HarvestRecord{},
		&model.Approval{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Printf("redis unavailable, running without cache: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	areaRepo := repository.NewAreaRepository(gormDB)
	soilTypeRepo := repository.NewSoilTypeRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	revocations := auth.NewRevocationStore(cacheClient)

	// Media storage
	mediaStore := media.NewStore(cfg.UploadDir)

	// Services
	authService := service.NewAuthService(userRepo, jwtService, revocations)
	areaService := service.NewAreaService(areaRepo, soilTypeRepo, mediaStore, cacheClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	areaHandler := handler.NewAreaHandler(areaService, cfg.UploadBaseURL)

	router.Register(e, cfg, jwtService, revocations, authHandler, areaHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
