package model

import "errors"

var (
	// ErrCircleNotFound indicates that the requested circle does not exist.
	ErrCircleNotFound = errors.New("circle not found")
	// ErrInvalidCircleName indicates an empty or oversized circle name.
	ErrInvalidCircleName = errors.New("invalid circle name")
)
