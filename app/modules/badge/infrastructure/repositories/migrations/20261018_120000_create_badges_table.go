package badgemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating badges table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS badges (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					min_points BIGINT NOT NULL CHECK (min_points >= 0),
					max_points BIGINT NOT NULL CHECK (max_points >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT badges_range_check CHECK (min_points <= max_points)
				);
			`); err != nil {
				return fmt.Errorf("failed to create badges table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_badges_catalog_order ON badges(min_points, name);
			`); err != nil {
				return fmt.Errorf("failed to create badges index: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping badges table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS badges CASCADE;`); err != nil {
			return fmt.Errorf("failed to drop badges table: %w", err)
		}
		return nil
	})
}
