// Package main provides the reader_agent CLI: the HTTP API server and local
// tools for inspecting recommendations and generated versions.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "reader_agent",
	Short: "Reading personalization engine for dyslexic readers",
	Long: "reader_agent rewrites documents into several reading-friendly versions, recommends one per reader " +
		"and learns from the versions each reader chooses.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file (environment variables override it)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
