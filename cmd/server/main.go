package main

import (
	"context"
	"log"
	"time"

	"arqueo-backend/internal/cache"
	"arqueo-backend/internal/config"
	"arqueo-backend/internal/models"
	"arqueo-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := config.NewLogger(cfg)

	db := config.InitDB(cfg, lg)

	if err := db.AutoMigrate(
		&models.Seller{},
		&models.Client{},
		&models.Arqueo{},
		&models.CreditLine{},
		&models.ExpenseLine{},
		&models.Route{},
		&models.VisitLog{},
		&models.SubmissionLog{},
	); err != nil {
		lg.Fatalf("auto migrate: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.New(context.Background(), cfg.RedisAddr)
		if err != nil {
			config.LogError(lg, "main", "main", "redis unavailable, debtor cache disabled", cfg.RedisAddr, err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Redis:    rdb,
		CacheTTL: cfg.CacheTTL,
		Location: cfg.Location(),
		Logger:   lg,
	})

	lg.WithField("addr", cfg.AppAddr).Info("server listening")
	if err := r.Run(cfg.AppAddr); err != nil {
		lg.Fatalf("server: %v", err)
	}
}
