package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/handlers"
	"github.com/frostvortexog/ZenithWave-Refer/internal/middleware"
	"github.com/frostvortexog/ZenithWave-Refer/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, telegram *services.TelegramService) {
	webhookHandler := handlers.NewWebhookHandler(db, cfg, telegram)
	verifyHandler := handlers.NewVerifyHandler(db, cfg, telegram)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Telegram webhook
	app.Post("/webhook", middleware.TelegramAuthMiddleware(cfg.WebhookSecret), webhookHandler.Handle)

	// Web verification step
	app.Get("/verify", verifyHandler.Page)

	api := app.Group("/api")
	api.Post("/verify", verifyHandler.Submit)

	// Admin dashboard API
	admin := api.Group("/admin")
	admin.Post("/login", adminHandler.Login)

	protected := admin.Group("", middleware.AuthMiddleware(cfg))
	protected.Post("/coupons", adminHandler.AddCoupons)
	protected.Delete("/coupons", adminHandler.RemoveCoupons)
	protected.Get("/coupons/stock", adminHandler.CouponStock)
	protected.Get("/redemptions", adminHandler.ListRedemptions)
	protected.Put("/settings/threshold", adminHandler.SetThreshold)
}
