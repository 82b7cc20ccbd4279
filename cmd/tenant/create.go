package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenantpress/internal/core/tenant"
)

var createName string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a tenant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		pool, err := adminPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		t, err := tenant.NewPostgresRegistry(pool).Create(ctx, tenant.CreateInput{Name: createName})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.ID, t.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "tenant display name")
	_ = createCmd.MarkFlagRequired("name")
}
