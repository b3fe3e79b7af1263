package model

// ChangeRoleRequest is the body of PUT /circles/:circle_id/members/:user_id/role.
type ChangeRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=admin member leader"`
}

// TransferLeadershipRequest is the body of POST /circles/:circle_id/leadership/transfer.
type TransferLeadershipRequest struct {
	NomineeID string `json:"nominee_id" binding:"required,max=255"`
}

// MemberResponse wraps a single member record.
type MemberResponse struct {
	Member *Member `json:"member"`
}

// ListMembersResponse is the member listing of a circle.
type ListMembersResponse struct {
	CircleID string    `json:"circle_id"`
	Members  []*Member `json:"members"`
}

// RoleResponse reports a user's role in a circle.
type RoleResponse struct {
	CircleID string `json:"circle_id"`
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
}

// TransferLeadershipResponse reports both sides of a completed transfer.
type TransferLeadershipResponse struct {
	CircleID       string `json:"circle_id"`
	LeaderID       string `json:"leader_id"`
	FormerLeaderID string `json:"former_leader_id"`
}
