package service

import (
	"errors"

	"github.com/okieraised/points-of-interests/internal/models"
)

var (
	// ErrInvalidArgument marks requests rejected before reaching storage.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a handle, feature or placemark does not exist.
	ErrNotFound = models.ErrNotFound
)
