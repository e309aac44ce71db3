package main

import (
	"os"

	"cliplink/internal/app"
)

func main() {
	code := app.Run("clipd", run)
	os.Exit(code)
}
