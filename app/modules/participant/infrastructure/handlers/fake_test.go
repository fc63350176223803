package participanthandlers

import (
	"context"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	participantservice "github.com/ChuloWay/gamification-system/app/modules/participant/application"
	"github.com/google/uuid"
)

// ------------------------
// Fake Participant Service
// ------------------------

type FakeService struct {
	RegisterFunc          func(ctx context.Context, input participantservice.RegisterInput) (*participantservice.AuthResponse, error)
	LoginFunc             func(ctx context.Context, email, password string) (*participantservice.AuthResponse, error)
	GetParticipantFunc    func(ctx context.Context, id uuid.UUID) (*participantservice.Participant, error)
	ListParticipantsFunc  func(ctx context.Context) ([]participantservice.Participant, error)
	DeleteParticipantFunc func(ctx context.Context, id uuid.UUID) error
}

func (f *FakeService) Register(ctx context.Context, input participantservice.RegisterInput) (*participantservice.AuthResponse, error) {
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, input)
	}
	return nil, participantservice.ErrInvalidInput
}

func (f *FakeService) Login(ctx context.Context, email, password string) (*participantservice.AuthResponse, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return nil, participantservice.ErrInvalidCredentials
}

func (f *FakeService) GetParticipant(ctx context.Context, id uuid.UUID) (*participantservice.Participant, error) {
	if f.GetParticipantFunc != nil {
		return f.GetParticipantFunc(ctx, id)
	}
	return nil, participantservice.ErrNotFound
}

func (f *FakeService) ListParticipants(ctx context.Context) ([]participantservice.Participant, error) {
	if f.ListParticipantsFunc != nil {
		return f.ListParticipantsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	if f.DeleteParticipantFunc != nil {
		return f.DeleteParticipantFunc(ctx, id)
	}
	return participantservice.ErrNotFound
}

var _ participantservice.Service = (*FakeService)(nil)

// ------------------------
// Fake Points Awarder
// ------------------------

type FakeAwarder struct {
	AwardPointsFunc func(ctx context.Context, participantID uuid.UUID, delta int64, reason leaderboardservice.Reason) (*leaderboardservice.AwardResult, error)
}

func (f *FakeAwarder) AwardPoints(ctx context.Context, participantID uuid.UUID, delta int64, reason leaderboardservice.Reason) (*leaderboardservice.AwardResult, error) {
	if f.AwardPointsFunc != nil {
		return f.AwardPointsFunc(ctx, participantID, delta, reason)
	}
	return nil, leaderboardservice.ErrParticipantNotFound
}

var _ PointsAwarder = (*FakeAwarder)(nil)
