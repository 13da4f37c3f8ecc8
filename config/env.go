package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file in the working directory.
// Variables already present in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}
