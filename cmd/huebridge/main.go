package main

import (
	"os"

	"github.com/yveskaufmann/huebridge/internal/app"
)

func main() {
	appInstance := app.Bootstrap()

	appInstance.Logger().Info("starting hue bridge emulator with PID=", os.Getpid())

	if err := appInstance.Run(); err != nil {
		appInstance.Logger().Fatalf("unhandled error: %v", err)
	}
}
