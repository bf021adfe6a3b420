package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/yourusername/billing/cmd"
	"github.com/yourusername/billing/logger"
)

func main() {
	godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "console"
	}
	if err := logger.Setup(level, format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
