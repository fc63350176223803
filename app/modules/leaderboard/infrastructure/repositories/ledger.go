package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// LoadParticipant reads the participant row and its owned badge and achievement ids.
// Inside a transaction the row stays locked until commit, so concurrent awards
// queue on it instead of failing the compare-and-swap.
func (r *Impl) LoadParticipant(ctx context.Context, db bun.IDB, participantID uuid.UUID) (*LedgerEntry, error) {
	db = r.resolveDB(db)

	row := new(ParticipantScore)
	query := db.NewSelect().
		Model(row).
		Column("id", "name", "score", "updated_at").
		Where("id = ?", participantID)
	if _, inTx := db.(bun.Tx); inTx {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.LoadParticipant: %w", err)
	}

	var badgeIDs []uuid.UUID
	err := db.NewSelect().
		Model((*ParticipantBadge)(nil)).
		Column("badge_id").
		Where("participant_id = ?", participantID).
		Order("earned_at ASC").
		Scan(ctx, &badgeIDs)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.LoadParticipant: badges: %w", err)
	}

	var achievementIDs []uuid.UUID
	err = db.NewSelect().
		Model((*ParticipantAchievement)(nil)).
		Column("achievement_id").
		Where("participant_id = ?", participantID).
		Order("granted_at ASC").
		Scan(ctx, &achievementIDs)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.LoadParticipant: achievements: %w", err)
	}

	return &LedgerEntry{
		ID:             row.ID,
		Name:           row.Name,
		Score:          row.Score,
		UpdatedAt:      row.UpdatedAt,
		BadgeIDs:       badgeIDs,
		AchievementIDs: achievementIDs,
	}, nil
}

// CompareAndSwapScore updates the score guarded by the expected value.
func (r *Impl) CompareAndSwapScore(ctx context.Context, db bun.IDB, participantID uuid.UUID, expected, next int64) error {
	db = r.resolveDB(db)

	result, err := db.NewUpdate().
		Model((*ParticipantScore)(nil)).
		Set("score = ?", next).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", participantID).
		Where("score = ?", expected).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.CompareAndSwapScore: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("leaderboarddb.CompareAndSwapScore: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrScoreConflict
	}
	return nil
}

// AddBadge inserts the badge unless the participant already owns it.
func (r *Impl) AddBadge(ctx context.Context, db bun.IDB, participantID, badgeID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)

	result, err := db.NewInsert().
		Model(&ParticipantBadge{
			ParticipantID: participantID,
			BadgeID:       badgeID,
			EarnedAt:      time.Now().UTC(),
		}).
		On("CONFLICT (participant_id, badge_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("leaderboarddb.AddBadge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leaderboarddb.AddBadge: rows affected: %w", err)
	}
	return rows > 0, nil
}

// AddAchievement inserts the grant; an existing grant yields ErrAlreadyGranted.
func (r *Impl) AddAchievement(ctx context.Context, db bun.IDB, participantID, achievementID uuid.UUID, points int64) error {
	db = r.resolveDB(db)

	result, err := db.NewInsert().
		Model(&ParticipantAchievement{
			ParticipantID: participantID,
			AchievementID: achievementID,
			Points:        points,
			GrantedAt:     time.Now().UTC(),
		}).
		On("CONFLICT (participant_id, achievement_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.AddAchievement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("leaderboarddb.AddAchievement: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyGranted
	}
	return nil
}

// ListScores returns all participant scores in rank order.
func (r *Impl) ListScores(ctx context.Context, db bun.IDB) ([]ScoreEntry, error) {
	db = r.resolveDB(db)

	var entries []ScoreEntry
	err := db.NewSelect().
		Model((*ParticipantScore)(nil)).
		Column("id", "score").
		OrderExpr("score DESC, updated_at ASC, id ASC").
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListScores: %w", err)
	}
	return entries, nil
}

// ListOwnedBadges groups every owned badge by participant.
func (r *Impl) ListOwnedBadges(ctx context.Context, db bun.IDB) (map[uuid.UUID][]uuid.UUID, error) {
	db = r.resolveDB(db)

	var rows []ParticipantBadge
	err := db.NewSelect().
		Model(&rows).
		Column("participant_id", "badge_id").
		Order("participant_id ASC", "earned_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListOwnedBadges: %w", err)
	}

	owned := make(map[uuid.UUID][]uuid.UUID)
	for _, row := range rows {
		owned[row.ParticipantID] = append(owned[row.ParticipantID], row.BadgeID)
	}
	return owned, nil
}

// DisplayNames looks up participant names by id.
func (r *Impl) DisplayNames(ctx context.Context, db bun.IDB, participantIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(participantIDs))
	if len(participantIDs) == 0 {
		return names, nil
	}
	db = r.resolveDB(db)

	var rows []ParticipantScore
	err := db.NewSelect().
		Model(&rows).
		Column("id", "name").
		Where("id IN (?)", bun.In(participantIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.DisplayNames: %w", err)
	}

	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
