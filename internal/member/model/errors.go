package model

import "errors"

var (
	// ErrPermissionDenied indicates the actor's role is below what the operation requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrMemberNotFound indicates the user holds no role in the circle.
	ErrMemberNotFound = errors.New("member not found")
	// ErrCannotModifyLeader indicates a role change or removal targeted the leader.
	ErrCannotModifyLeader = errors.New("leader cannot be modified, transfer leadership instead")
	// ErrLeaderViaTransferOnly indicates an attempt to grant leader through a role change.
	ErrLeaderViaTransferOnly = errors.New("leader role can only be assigned by leadership transfer")
	// ErrNotLeader indicates the actor does not currently hold leader.
	ErrNotLeader = errors.New("only the current leader can transfer leadership")
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfTarget indicates the actor targeted themselves where that is not allowed.
	ErrSelfTarget = errors.New("operation cannot target yourself")
	// ErrLeaderCannotLeave indicates the leader tried to leave without transferring first.
	ErrLeaderCannotLeave = errors.New("leader must transfer leadership before leaving")
)
