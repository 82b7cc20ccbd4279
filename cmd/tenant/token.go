package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/auth"
	"tenantpress/internal/domain/user"
)

var (
	tokenTenant string
	tokenUser   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user of a tenant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is required")
		}
		tenantID, err := tenant.ParseID(tokenTenant)
		if err != nil {
			return err
		}
		userID, err := user.ParseIDString(tokenUser)
		if err != nil {
			return err
		}

		svc := auth.NewJWTService(auth.DefaultJWTConfig(secret))
		token, expiresAt, err := svc.GenerateAccessToken(userID.String(), tenantID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenTenant, "tenant", "", "tenant UUID")
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default 15m)")
	_ = tokenCmd.MarkFlagRequired("tenant")
	_ = tokenCmd.MarkFlagRequired("user")
}
