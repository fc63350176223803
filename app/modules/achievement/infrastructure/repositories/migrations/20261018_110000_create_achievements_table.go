package achievementmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating achievements table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS achievements (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				points BIGINT NOT NULL CHECK (points >= 0),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create achievements table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping achievements table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS achievements;`); err != nil {
			return fmt.Errorf("failed to drop achievements table: %w", err)
		}
		return nil
	})
}
