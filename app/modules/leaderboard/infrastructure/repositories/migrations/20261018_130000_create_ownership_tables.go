package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating participant ownership tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participant_badges (
					participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
					badge_id UUID NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
					earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (participant_id, badge_id)
				);
				CREATE INDEX IF NOT EXISTS idx_participant_badges_badge_id ON participant_badges(badge_id);
			`); err != nil {
				return fmt.Errorf("failed to create participant_badges table: %w", err)
			}

			// No FK to achievements: grants outlive catalog deletes.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participant_achievements (
					participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
					achievement_id UUID NOT NULL,
					points BIGINT NOT NULL CHECK (points >= 0),
					granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (participant_id, achievement_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create participant_achievements table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping participant ownership tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS participant_achievements;
			DROP TABLE IF EXISTS participant_badges;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop ownership tables: %w", err)
		}
		return nil
	})
}
