// Package main provides the entry point for the apply agent HTTP API server
// and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applyagent",
	Short: "Job application automation engine",
	Long:  "Apply agent scrapes job application forms, generates candidate responses from a profile, submits applications and orchestrates bulk apply runs via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
