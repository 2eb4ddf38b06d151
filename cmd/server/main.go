package main

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/database"
	"github.com/frostvortexog/ZenithWave-Refer/internal/routes"
	"github.com/frostvortexog/ZenithWave-Refer/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL, cfg.WithdrawPointsDefault)

	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.AdminIDs)

	app := fiber.New(fiber.Config{
		AppName: "ZenithWave Refer Bot",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, telegramService)

	if cfg.PublicBaseURL != "" {
		webhookURL := strings.TrimRight(cfg.PublicBaseURL, "/") + "/webhook"
		if err := telegramService.SetWebhook(webhookURL, cfg.WebhookSecret); err != nil {
			log.Printf("Telegram webhook registration failed: %v", err)
		}
	}

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
