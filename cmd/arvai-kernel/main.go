package main

import (
	"log"

	"github.com/MrSnakeDoc/arvai/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ arvai-kernel failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ arvai-kernel stopped with error: %v", err)
	}
}
