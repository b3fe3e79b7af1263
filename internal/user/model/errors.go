package model

import "errors"

var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUserID indicates that the provided user ID is invalid (e.g., empty).
	ErrInvalidUserID = errors.New("invalid user ID")
)

// ErrInvalidName indicates the display name is empty after markup is stripped.
var ErrInvalidName = errors.New("name is required")
