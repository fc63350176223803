package badgedb

import "errors"

// ErrNotFound is returned when a badge does not exist.
var ErrNotFound = errors.New("badge not found")
