// Package main provides the tenant management CLI.
//
//	tenant migrate
//	tenant create --name "ACME Corp"
//	tenant list
//	tenant token --tenant <uuid> --user <id>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tenantpress/internal/infrastructure/storage/postgres"
)

var adminURL string

var rootCmd = &cobra.Command{
	Use:           "tenant",
	Short:         "Manage tenantpress tenants and schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&adminURL, "admin-url", os.Getenv("ADMIN_DATABASE_URL"),
		"RLS-bypassing connection string (env ADMIN_DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd, createCmd, listCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// adminPool opens a small pool on the admin connection.
func adminPool(ctx context.Context) (*postgres.Pool, error) {
	if adminURL == "" {
		return nil, errors.New("--admin-url or ADMIN_DATABASE_URL is required")
	}
	cfg := postgres.DefaultPoolConfig(adminURL)
	cfg.ApplicationName = "tenantpress-cli"
	cfg.MaxConns = 2
	cfg.MinConns = 0
	return postgres.NewPool(ctx, cfg)
}
