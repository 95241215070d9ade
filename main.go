// @title Learning System API
// @version 1.0
// @description School learning management backend: syllabus tracking, generated quizzes, attempt scoring, weak-area analytics and class chat.

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"fmt"
	"learning_system_backend/internal/app"
	"learning_system_backend/internal/config"
	"learning_system_backend/pkg/logger"
	"log"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations at startup, even in release mode")
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	printStartUpBanner()

	// a missing .env is fine; the environment and config file still apply
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		logger.Log.Info("Database migration finished, exiting")
		application.Close()
		return
	}

	application.Run()
}

func printStartUpBanner() {
	figure.NewFigure("LEARNSYS", "", true).Print()
	fmt.Println("======================================================")
	fmt.Printf("Learning System API (v%s)\n\n", version)
}
