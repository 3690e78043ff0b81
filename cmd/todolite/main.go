package main

import (
	"context"
	"log"

	"github.com/epavlov/todolite/internal/app"
	"github.com/epavlov/todolite/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	a.Run(ctx)

}
