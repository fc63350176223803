package achievementdb

import "errors"

// ErrNotFound is returned when an achievement does not exist.
var ErrNotFound = errors.New("achievement not found")
