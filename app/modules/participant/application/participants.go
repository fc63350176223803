package participantservice

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	authdomain "github.com/ChuloWay/gamification-system/app/modules/auth/domain"
	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxNameLength     = 100
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

type authResult = results.OperationResult[*AuthResponse, error]

// Register creates an account, puts it on the leaderboard at zero and
// returns a token for it.
func (s *ParticipantService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	result, err := withTelemetry(s, ctx, "Register", input.Email, func(ctx context.Context) (authResult, error) {
		if err := validateRegistration(input); err != nil {
			return results.FailureResult[*AuthResponse, error](err), nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
		if err != nil {
			return authResult{}, fmt.Errorf("failed to hash password: %w", err)
		}

		row := &participantdb.Participant{
			ID:           uuid.New(),
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: string(hash),
		}
		created, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*participantdb.Participant, error], error) {
			if err := s.repo.Create(ctx, db, row); err != nil {
				if errors.Is(err, participantdb.ErrEmailTaken) {
					return results.FailureResult[*participantdb.Participant, error](ErrEmailTaken), nil
				}
				return results.OperationResult[*participantdb.Participant, error]{}, fmt.Errorf("failed to create participant: %w", err)
			}
			return results.SuccessResult[*participantdb.Participant, error](row), nil
		})
		if err != nil {
			return authResult{}, err
		}
		if created.IsFailure() {
			return results.FailureResult[*AuthResponse, error](*created.Failure), nil
		}

		// The account is committed; a rebuild repairs a missed projection.
		if err := s.ranks.TrackParticipant(context.WithoutCancel(ctx), row.ID, 0); err != nil {
			s.logger.WarnContext(ctx, "Failed to place participant on leaderboard",
				attr.ExtractCorrelationID(ctx),
				attr.ParticipantID(row.ID),
				attr.Error(err),
			)
		}

		response, err := s.issueToken(row)
		if err != nil {
			return authResult{}, err
		}
		return results.SuccessResult[*AuthResponse, error](response), nil
	})
	return unwrap(result, err)
}

func validateRegistration(input RegisterInput) error {
	switch {
	case input.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case utf8.RuneCountInString(input.Name) > maxNameLength:
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	case input.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case len(input.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	case len(input.Password) > maxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	return nil
}

// Login checks the password and returns a fresh token.
func (s *ParticipantService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := withTelemetry(s, ctx, "Login", email, func(ctx context.Context) (authResult, error) {
		row, err := s.repo.GetByEmail(ctx, nil, email)
		if err != nil {
			if errors.Is(err, participantdb.ErrNotFound) {
				return results.FailureResult[*AuthResponse, error](ErrInvalidCredentials), nil
			}
			return authResult{}, fmt.Errorf("failed to load participant: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
			return results.FailureResult[*AuthResponse, error](ErrInvalidCredentials), nil
		}

		response, err := s.issueToken(row)
		if err != nil {
			return authResult{}, err
		}
		return results.SuccessResult[*AuthResponse, error](response), nil
	})
	return unwrap(result, err)
}

func (s *ParticipantService) issueToken(row *participantdb.Participant) (*AuthResponse, error) {
	now := time.Now().UTC()
	token, err := s.tokens.GenerateToken(&authdomain.Claims{
		ParticipantID: row.ID,
		Email:         row.Email,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.cfg.TokenTTL),
	}, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, Participant: toParticipant(row)}, nil
}

// GetParticipant returns one account.
func (s *ParticipantService) GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error) {
	result, err := withTelemetry(s, ctx, "GetParticipant", id.String(), func(ctx context.Context) (results.OperationResult[*Participant, error], error) {
		row, err := s.repo.GetByID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, participantdb.ErrNotFound) {
				return results.FailureResult[*Participant, error](ErrNotFound), nil
			}
			return results.OperationResult[*Participant, error]{}, fmt.Errorf("failed to get participant: %w", err)
		}
		participant := toParticipant(row)
		return results.SuccessResult[*Participant, error](&participant), nil
	})
	return unwrap(result, err)
}

// ListParticipants returns every account.
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]Participant, error) {
	result, err := withTelemetry(s, ctx, "ListParticipants", "all", func(ctx context.Context) (results.OperationResult[[]Participant, error], error) {
		rows, err := s.repo.List(ctx, nil)
		if err != nil {
			return results.OperationResult[[]Participant, error]{}, fmt.Errorf("failed to list participants: %w", err)
		}
		participants := make([]Participant, 0, len(rows))
		for i := range rows {
			participants = append(participants, toParticipant(&rows[i]))
		}
		return results.SuccessResult[[]Participant, error](participants), nil
	})
	return unwrap(result, err)
}

// DeleteParticipant removes the account, its badges and achievements, and
// takes it off the leaderboard.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	result, err := withTelemetry(s, ctx, "DeleteParticipant", id.String(), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		deleted, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			if err := s.repo.Delete(ctx, db, id); err != nil {
				if errors.Is(err, participantdb.ErrNotFound) {
					return results.FailureResult[struct{}, error](ErrNotFound), nil
				}
				return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to delete participant: %w", err)
			}
			return results.SuccessResult[struct{}, error](struct{}{}), nil
		})
		if err != nil || deleted.IsFailure() {
			return deleted, err
		}

		// The row is gone; the ranking must follow even if the caller leaves.
		if err := s.ranks.RemoveParticipant(context.WithoutCancel(ctx), id); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove participant from leaderboard",
				attr.ExtractCorrelationID(ctx),
				attr.ParticipantID(id),
				attr.Error(err),
			)
		}
		return deleted, nil
	})
	_, err = unwrap(result, err)
	return err
}

var _ Service = (*ParticipantService)(nil)
