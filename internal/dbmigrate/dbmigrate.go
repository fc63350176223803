// Package dbmigrate runs every module's schema migrations in dependency order.
package dbmigrate

import (
	"context"
	"fmt"
	"log/slog"

	achievementmigrations "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories/migrations"
	badgemigrations "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories/migrations"
	leaderboardmigrations "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories/migrations"
	participantmigrations "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module pairs a module name with its migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules returns the migration sets in the order they must run. The ledger
// ownership tables reference participants and badges, so they come last.
func Modules() []Module {
	return []Module{
		{Name: "participant", Migrations: participantmigrations.Migrations},
		{Name: "achievement", Migrations: achievementmigrations.Migrations},
		{Name: "badge", Migrations: badgemigrations.Migrations},
		{Name: "leaderboard", Migrations: leaderboardmigrations.Migrations},
	}
}

// Migrate initializes the bun migration tables, applies every module's
// pending migrations and then River's queue schema.
func Migrate(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	modules := Modules()
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, mod := range modules {
		group, err := migrate.NewMigrator(db, mod.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations to run", slog.String("module", mod.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module", slog.String("module", mod.Name), slog.String("group", group.String()))
		}
	}

	if dsn != "" {
		if err := MigrateRiver(ctx, dsn); err != nil {
			return err
		}
		logger.InfoContext(ctx, "River queue migrations completed")
	}
	return nil
}

// MigrateRiver applies River's own schema migrations.
func MigrateRiver(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}
