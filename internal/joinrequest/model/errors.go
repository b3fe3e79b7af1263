package model

import "errors"

var (
	// ErrJoinRequestNotFound indicates no request with the id exists in the circle.
	ErrJoinRequestNotFound = errors.New("join request not found")
	// ErrJoinRequestExists indicates the user already has a pending request for the circle.
	ErrJoinRequestExists = errors.New("pending join request already exists")
	// ErrJoinRequestNotPending indicates the request was already decided.
	ErrJoinRequestNotPending = errors.New("join request is not pending")
	// ErrInvalidDecision indicates a decision that does not end the request.
	ErrInvalidDecision = errors.New("join request decision must be approved, rejected or withdrawn")
	// ErrAlreadyMember indicates the applicant already belongs to the circle.
	ErrAlreadyMember = errors.New("user is already a member of the circle")
)
