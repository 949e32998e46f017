package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the store schema",
	Long:  "Apply pending migrations to the configured store (DATABASE_URL for Postgres, otherwise SQLITE_PATH).",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.openStore(cmd.Context()); err != nil {
		return err
	}
	backend := "sqlite"
	if a.cfg.DatabaseURL != "" {
		backend = "postgres"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", backend)
	return nil
}
