package leaderboardqueue

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// QueueName is the River queue the leaderboard jobs run on.
const QueueName = "leaderboard"

// pendingStates collapses duplicate jobs only while one is still waiting or
// running, so a finished job never blocks the next one.
var pendingStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateRunning,
	rivertype.JobStateScheduled,
}

// ReconcileLeaderboardJob rebuilds the rank cache from the ledger.
type ReconcileLeaderboardJob struct{}

// Kind returns the job type identifier for River
func (ReconcileLeaderboardJob) Kind() string { return "reconcile_leaderboard" }

func (ReconcileLeaderboardJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:      QueueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true, ByState: pendingStates},
	}
}

// ReevaluateBadgesJob grants badges whose range covers the participant's
// score. A nil ParticipantID covers every participant.
type ReevaluateBadgesJob struct {
	ParticipantID *uuid.UUID `json:"participant_id,omitempty"`
}

// Kind returns the job type identifier for River
func (ReevaluateBadgesJob) Kind() string { return "reevaluate_badges" }

func (ReevaluateBadgesJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 10,
		UniqueOpts:  river.UniqueOpts{ByArgs: true, ByState: pendingStates},
	}
}
