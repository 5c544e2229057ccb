package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yellowpin/yellowpin-backend/internal/app"
)

func main() {
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		a.Log.Fatal("Failed to start app", "error", err)
	}

	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr)
	if err := a.Run(addr); err != nil {
		a.Log.Fatal("Server exited", "error", err)
	}
}
