package main

import (
	"log"

	"paypalplus/config"
	"paypalplus/internal/app"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("app: %s", err)
	}
}
