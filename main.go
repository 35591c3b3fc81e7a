package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// A .env file in the working directory seeds the environment before
	// config resolution. Missing files are fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}
