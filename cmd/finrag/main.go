package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/tanmayhire99/finrag/internal/adapters/driving/cli"
)

func main() {
	// Secrets (OPENAI_API_KEY, FINRAG_DB_PASSWORD) can live in a local
	// .env; a missing file is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
