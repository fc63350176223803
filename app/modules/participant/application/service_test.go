package participantservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	authjwt "github.com/ChuloWay/gamification-system/app/modules/auth/infrastructure/jwt"
	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"
)

type testHarness struct {
	svc    *ParticipantService
	repo   *FakeParticipantRepo
	ranks  *FakeRankTracker
	tokens authjwt.Provider
}

func newHarness() *testHarness {
	h := &testHarness{
		repo:   NewFakeParticipantRepo(),
		ranks:  &FakeRankTracker{},
		tokens: authjwt.NewProvider("test-secret"),
	}
	h.svc = NewParticipantService(
		h.repo,
		h.ranks,
		h.tokens,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		Config{BcryptCost: bcrypt.MinCost},
	)
	return h
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     gofakeit.Name(),
		Email:    strings.ToLower(gofakeit.Email()),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(in *RegisterInput)
		setup    func(h *testHarness)
		wantErr  error
		infraErr bool
	}{
		{name: "valid registration"},
		{name: "email is normalized", mutate: func(in *RegisterInput) { in.Email = "  Ada@Example.COM " }},
		{name: "missing name", mutate: func(in *RegisterInput) { in.Name = "  " }, wantErr: ErrInvalidInput},
		{name: "bad email", mutate: func(in *RegisterInput) { in.Email = "not-an-email" }, wantErr: ErrInvalidInput},
		{name: "display form email", mutate: func(in *RegisterInput) { in.Email = "Ada <ada@example.com>" }, wantErr: ErrInvalidInput},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password = "short" }, wantErr: ErrInvalidInput},
		{name: "long password", mutate: func(in *RegisterInput) { in.Password = strings.Repeat("x", 73) }, wantErr: ErrInvalidInput},
		{
			name:    "duplicate email",
			mutate:  func(in *RegisterInput) { in.Email = "taken@example.com" },
			setup:   func(h *testHarness) { _, _ = h.svc.Register(ctx, RegisterInput{Name: "First", Email: "taken@example.com", Password: "password123"}) },
			wantErr: ErrEmailTaken,
		},
		{
			name: "repository failure",
			setup: func(h *testHarness) {
				h.repo.CreateFunc = func(context.Context, bun.IDB, *participantdb.Participant) error {
					return errors.New("connection refused")
				}
			},
			infraErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.setup != nil {
				tt.setup(h)
			}
			input := validInput()
			if tt.mutate != nil {
				tt.mutate(&input)
			}
			tracked := len(h.ranks.Tracked)

			resp, err := h.svc.Register(ctx, input)
			if tt.wantErr != nil || tt.infraErr {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Len(t, h.ranks.Tracked, tracked)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, strings.ToLower(strings.TrimSpace(input.Email)), resp.Participant.Email)
			assert.Zero(t, resp.Participant.Score)
			assert.Equal(t, []uuid.UUID{resp.Participant.ID}, h.ranks.Tracked)

			claims, err := h.tokens.ValidateToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, resp.Participant.ID, claims.ParticipantID)

			stored, err := h.repo.GetByID(ctx, nil, resp.Participant.ID)
			require.NoError(t, err)
			assert.NotEqual(t, input.Password, stored.PasswordHash)
		})
	}
}

func TestRegister_RankFailureDoesNotFail(t *testing.T) {
	h := newHarness()
	h.ranks.TrackErr = errors.New("redis timeout")

	resp, err := h.svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	input := validInput()
	registered, err := h.svc.Register(ctx, input)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		resp, err := h.svc.Login(ctx, strings.ToUpper(input.Email), input.Password)
		require.NoError(t, err)
		assert.Equal(t, registered.Participant.ID, resp.Participant.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := h.svc.Login(ctx, input.Email, input.Password+"!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := h.svc.Login(ctx, "nobody@example.com", input.Password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetAndListParticipants(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a, err := h.svc.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = h.svc.Register(ctx, validInput())
	require.NoError(t, err)

	got, err := h.svc.GetParticipant(ctx, a.Participant.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Participant.Email, got.Email)

	_, err = h.svc.GetParticipant(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := h.svc.ListParticipants(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	h.repo.ListFunc = func(context.Context, bun.IDB) ([]participantdb.Participant, error) {
		return nil, errors.New("statement timeout")
	}
	_, err = h.svc.ListParticipants(ctx)
	assert.Error(t, err)
}

func TestDeleteParticipant(t *testing.T) {
	ctx := context.Background()

	t.Run("removes from ledger then leaderboard", func(t *testing.T) {
		h := newHarness()
		resp, err := h.svc.Register(ctx, validInput())
		require.NoError(t, err)

		require.NoError(t, h.svc.DeleteParticipant(ctx, resp.Participant.ID))
		assert.Equal(t, []uuid.UUID{resp.Participant.ID}, h.ranks.Removed)
		_, err = h.svc.GetParticipant(ctx, resp.Participant.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown participant", func(t *testing.T) {
		h := newHarness()
		assert.ErrorIs(t, h.svc.DeleteParticipant(ctx, uuid.New()), ErrNotFound)
		assert.Empty(t, h.ranks.Removed)
	})

	t.Run("ledger failure keeps ranking untouched", func(t *testing.T) {
		h := newHarness()
		h.repo.DeleteFunc = func(context.Context, bun.IDB, uuid.UUID) error {
			return errors.New("deadlock detected")
		}
		assert.Error(t, h.svc.DeleteParticipant(ctx, uuid.New()))
		assert.Empty(t, h.ranks.Removed)
	})

	t.Run("caller cancellation after commit still updates leaderboard", func(t *testing.T) {
		h := newHarness()
		id := uuid.New()
		callerCtx, cancel := context.WithCancel(ctx)
		h.repo.DeleteFunc = func(context.Context, bun.IDB, uuid.UUID) error {
			cancel()
			return nil
		}

		require.NoError(t, h.svc.DeleteParticipant(callerCtx, id))
		assert.Equal(t, []uuid.UUID{id}, h.ranks.Removed)
		assert.Equal(t, []error{nil}, h.ranks.RemoveCtxErrs)
	})

	t.Run("leaderboard failure is logged", func(t *testing.T) {
		h := newHarness()
		resp, err := h.svc.Register(ctx, validInput())
		require.NoError(t, err)
		h.ranks.RemoveErr = errors.New("redis timeout")

		assert.NoError(t, h.svc.DeleteParticipant(ctx, resp.Participant.ID))
	})
}
