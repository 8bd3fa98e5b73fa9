package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/ursais/web-api/pkg/serverfx"
)

func main() {
	// Local development only; in production the environment is injected.
	_ = godotenv.Load()

	fx.New(
		serverfx.Module(serverfx.WithService("web-api")),
	).Run()
}
