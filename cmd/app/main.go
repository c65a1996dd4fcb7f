package main

import (
	"log"

	"github.com/signage-toolkit/gateway/config"
	"github.com/signage-toolkit/gateway/internal/app"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("config error: %s", err)
	}

	app.Run(cfg)
}
