package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/schoolsite/backend/internal/config"
	"github.com/schoolsite/backend/internal/database"
	"github.com/schoolsite/backend/internal/handlers"
	"github.com/schoolsite/backend/internal/middleware"
	"github.com/schoolsite/backend/internal/storage"
	"github.com/schoolsite/backend/pkg/logger"
	"github.com/schoolsite/backend/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	authHandler := handlers.NewAuthHandler(db)
	adminHandler := handlers.NewAdminHandler(db, cfg.Admin.BootstrapEmail)
	imagesHandler := handlers.NewImagesHandler(store)
	announcementsHandler := handlers.NewAnnouncementsHandler(db, store)
	eventsHandler := handlers.NewEventsHandler(db, store)
	facilitiesHandler := handlers.NewFacilitiesHandler(db, store)
	achievementsHandler := handlers.NewAchievementsHandler(db, store)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.AllowOrigins))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/guest", authHandler.Guest)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	adminRoutes := api.Group("/admin")
	adminRoutes.Get("/status", authMiddleware.OptionalAuth, adminHandler.Status)
	adminRoutes.Post("/grant", authMiddleware.OptionalAuth, adminHandler.Grant)
	adminRoutes.Get("/users", authMiddleware.RequireAuth, middleware.AdminOnly, adminHandler.ListUsers)

	api.Post("/images/upload-url", authMiddleware.RequireAuth, middleware.AdminOnly, imagesHandler.UploadURL)

	announcementsHandler.Register(api, "/announcements", authMiddleware)
	eventsHandler.Register(api, "/events", authMiddleware)
	facilitiesHandler.Register(api, "/facilities", authMiddleware)
	achievementsHandler.Register(api, "/achievements", authMiddleware)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
