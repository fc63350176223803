package badgeservice

import (
	"context"
	"errors"
	"fmt"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	badgedb "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type badgeResult = results.OperationResult[*badgedomain.Badge, error]

// CreateBadge validates and stores a new badge.
func (s *BadgeService) CreateBadge(ctx context.Context, input BadgeInput) (*badgedomain.Badge, error) {
	result, err := withTelemetry(s, ctx, "CreateBadge", input.Name, func(ctx context.Context) (badgeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (badgeResult, error) {
			return s.createBadgeLogic(ctx, db, input)
		})
	})
	return unwrap(result, err)
}

func (s *BadgeService) createBadgeLogic(ctx context.Context, db bun.IDB, input BadgeInput) (badgeResult, error) {
	badge := input.toDomain(uuid.New())
	if err := badge.Validate(); err != nil {
		return results.FailureResult[*badgedomain.Badge, error](err), nil
	}

	row := badgedb.FromDomain(badge)
	if err := s.repo.Create(ctx, db, row); err != nil {
		return badgeResult{}, fmt.Errorf("failed to create badge: %w", err)
	}

	created := row.ToDomain()
	return results.SuccessResult[*badgedomain.Badge, error](&created), nil
}

// GetBadge retrieves a badge by id.
func (s *BadgeService) GetBadge(ctx context.Context, id uuid.UUID) (*badgedomain.Badge, error) {
	result, err := withTelemetry(s, ctx, "GetBadge", id.String(), func(ctx context.Context) (badgeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (badgeResult, error) {
			row, err := s.repo.GetByID(ctx, db, id)
			if err != nil {
				if errors.Is(err, badgedb.ErrNotFound) {
					return results.FailureResult[*badgedomain.Badge, error](err), nil
				}
				return badgeResult{}, fmt.Errorf("failed to get badge: %w", err)
			}
			badge := row.ToDomain()
			return results.SuccessResult[*badgedomain.Badge, error](&badge), nil
		})
	})
	return unwrap(result, err)
}

// ListBadges returns the full catalog. The score coordinator reads it on
// every award to evaluate newly covered badges.
func (s *BadgeService) ListBadges(ctx context.Context) ([]badgedomain.Badge, error) {
	result, err := withTelemetry(s, ctx, "ListBadges", "catalog", func(ctx context.Context) (results.OperationResult[[]badgedomain.Badge, error], error) {
		rows, err := s.repo.List(ctx, nil)
		if err != nil {
			return results.OperationResult[[]badgedomain.Badge, error]{}, fmt.Errorf("failed to list badges: %w", err)
		}

		catalog := make([]badgedomain.Badge, 0, len(rows))
		for i := range rows {
			catalog = append(catalog, rows[i].ToDomain())
		}
		return results.SuccessResult[[]badgedomain.Badge, error](catalog), nil
	})
	return unwrap(result, err)
}

// UpdateBadge replaces the editable fields of a badge. Owners keep it even if
// the new range no longer covers their score.
func (s *BadgeService) UpdateBadge(ctx context.Context, id uuid.UUID, input BadgeInput) (*badgedomain.Badge, error) {
	result, err := withTelemetry(s, ctx, "UpdateBadge", id.String(), func(ctx context.Context) (badgeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (badgeResult, error) {
			badge := input.toDomain(id)
			if err := badge.Validate(); err != nil {
				return results.FailureResult[*badgedomain.Badge, error](err), nil
			}

			if err := s.repo.Update(ctx, db, badgedb.FromDomain(badge)); err != nil {
				if errors.Is(err, badgedb.ErrNotFound) {
					return results.FailureResult[*badgedomain.Badge, error](err), nil
				}
				return badgeResult{}, fmt.Errorf("failed to update badge: %w", err)
			}
			return results.SuccessResult[*badgedomain.Badge, error](&badge), nil
		})
	})
	return unwrap(result, err)
}

// DeleteBadge removes a badge from the catalog and from every owner.
func (s *BadgeService) DeleteBadge(ctx context.Context, id uuid.UUID) error {
	result, err := withTelemetry(s, ctx, "DeleteBadge", id.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			if err := s.repo.Delete(ctx, db, id); err != nil {
				if errors.Is(err, badgedb.ErrNotFound) {
					return results.FailureResult[bool, error](err), nil
				}
				return results.OperationResult[bool, error]{}, fmt.Errorf("failed to delete badge: %w", err)
			}
			return results.SuccessResult[bool, error](true), nil
		})
	})
	_, err = unwrap(result, err)
	return err
}
