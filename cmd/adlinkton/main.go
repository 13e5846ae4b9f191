package main

import (
	"log"

	"github.com/MrSnakeDoc/adlinkton/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ adlinkton failed to start: %v", err)
	}
}
