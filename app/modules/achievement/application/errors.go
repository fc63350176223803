package achievementservice

import (
	"errors"

	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
)

var (
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound = achievementdb.ErrNotFound
)
