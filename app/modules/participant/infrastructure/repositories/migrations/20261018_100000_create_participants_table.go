package participantmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating participants table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participants (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL,
					password_hash TEXT NOT NULL,
					score BIGINT NOT NULL DEFAULT 0 CHECK (score >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create participants table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_email ON participants(lower(email));
				CREATE INDEX IF NOT EXISTS idx_participants_rank ON participants(score DESC, updated_at ASC, id ASC);
			`); err != nil {
				return fmt.Errorf("failed to create participants indexes: %w", err)
			}

			fmt.Println("Participants table created.")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping participants table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS participants CASCADE;`); err != nil {
			return fmt.Errorf("failed to drop participants table: %w", err)
		}
		return nil
	})
}
