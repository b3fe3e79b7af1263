package model

// CreateCircleRequest is the body of POST /circles.
type CreateCircleRequest struct {
	Name           string `json:"name"            binding:"required,max=255"`
	UniversityName string `json:"university_name" binding:"max=255"`
	ContactInfo    string `json:"contact_info"    binding:"max=255"`
	Description    string `json:"description"     binding:"max=4000"`
}

// CircleResponse wraps a circle.
type CircleResponse struct {
	Circle *Circle `json:"circle"`
}

// Counts are the live figures shown on circle screens. PendingRequests is
// only populated for admins and the leader.
type Counts struct {
	CircleID        string `json:"circle_id"`
	Members         int64  `json:"members"`
	PendingRequests *int64 `json:"pending_requests,omitempty"`
}

// PermissionResponse is the answer to a permission query.
type PermissionResponse struct {
	CircleID     string `json:"circle_id"`
	UserID       string `json:"user_id"`
	RequiredRole string `json:"required_role"`
	Allowed      bool   `json:"allowed"`
}
