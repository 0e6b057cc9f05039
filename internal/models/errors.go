package models

import "errors"

// ErrNotFound is returned when a record or placemark does not exist.
var ErrNotFound = errors.New("not found")
