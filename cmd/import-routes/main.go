package main

import (
	"os"

	"arqueo-backend/cmd/import-routes/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
