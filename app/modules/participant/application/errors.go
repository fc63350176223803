package participantservice

import (
	"errors"

	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
)

var (
	// ErrInvalidInput wraps every registration validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound   = participantdb.ErrNotFound
	ErrEmailTaken = participantdb.ErrEmailTaken
)
