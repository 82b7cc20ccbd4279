// Package main seeds a demo tenant with one author and one article.
//
// The tenant row is created on the admin connection; everything else goes
// through the tenant-scoped executor on the application role, so the demo
// data is subject to row-level security like any request.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"tenantpress/internal/config"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/article"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/internal/infrastructure/storage/postgres/article_repo"
	"tenantpress/internal/infrastructure/storage/postgres/migrations"
	"tenantpress/internal/infrastructure/storage/postgres/user_repo"
	"tenantpress/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}
	if cfg.AdminDatabaseURL == "" {
		log.Fatal("ADMIN_DATABASE_URL environment variable is required")
	}

	ctx := logger.WithLogger(context.Background(), log)

	admin, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.AdminDatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to admin database", "error", err)
	}
	defer admin.Close()

	if applied, err := migrations.Run(ctx, admin); err != nil {
		log.Fatalw("failed to migrate", "error", err)
	} else if len(applied) > 0 {
		log.Infow("migrations applied", "files", applied)
	}

	t, err := tenant.NewPostgresRegistry(admin).Create(ctx, tenant.CreateInput{Name: "demo"})
	if err != nil {
		log.Fatalw("failed to create tenant", "error", err)
	}
	log.Infow("tenant created", "tenant_id", t.ID)

	app, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer app.Close()

	exec := postgres.NewExecutor(postgres.ExecutorConfig{Primary: app})

	dto, err := seedDemoData(ctx, exec, t.ID)
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	out, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		log.Fatalw("failed to encode article", "error", err)
	}
	fmt.Println(string(out))

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, exec *postgres.Executor, tenantID tenant.ID) (*article.Dto, error) {
	users := user.NewService[postgres.Reader, postgres.Writer](exec, user_repo.New())
	articles := article.NewService[postgres.Reader, postgres.Writer](exec, article_repo.New())

	alice, err := user.NewCreateActive("Alice", "alice@example.com")
	if err != nil {
		return nil, err
	}
	authorID, err := users.Register(ctx, tenantID, alice)
	if err != nil {
		return nil, err
	}

	hello, err := article.NewCreate("Hello", "World", authorID.Int64())
	if err != nil {
		return nil, err
	}
	articleID, err := articles.Create(ctx, tenantID, hello)
	if err != nil {
		return nil, err
	}

	return articles.Get(ctx, tenantID, articleID)
}
