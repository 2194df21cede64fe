package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/gemini"
	"github.com/taskhub-dev/taskhub/internal/reports"
	"github.com/taskhub-dev/taskhub/internal/router"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
	"github.com/taskhub-dev/taskhub/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	model := os.Getenv("GEMINI_MODEL")

	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	summarizer := gemini.NewClient(os.Getenv("GEMINI_API_KEY"), model, gemini.DefaultGenerationConfig)
	deliverer := telegram.NewClient(os.Getenv("TELEGRAM_BOT_TOKEN"))

	pollInterval := time.Hour

	if raw := os.Getenv("REPORT_POLL_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid REPORT_POLL_INTERVAL: %v", err)
		}
		pollInterval = parsed
	}

	generator := reports.NewGenerator(db.DB, summarizer, deliverer)

	reportScheduler := scheduler.NewScheduler(generator, pollInterval)
	reportScheduler.Start()
	defer reportScheduler.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
