package participantservice

import (
	"context"
	"time"

	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service manages participant accounts.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id uuid.UUID) error
}

// RankTracker keeps the ranking in step with account lifecycle.
type RankTracker interface {
	TrackParticipant(ctx context.Context, participantID uuid.UUID, score int64) error
	RemoveParticipant(ctx context.Context, participantID uuid.UUID) error
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Participant is the public view of an account.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token       string      `json:"token"`
	Participant Participant `json:"participant"`
}

func toParticipant(row *participantdb.Participant) Participant {
	return Participant{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Score:     row.Score,
		CreatedAt: row.CreatedAt,
	}
}
