// Package model provides data transfer objects for statistics module.
package model

// MemberStatistics counts a circle's members by role.
type MemberStatistics struct {
	Total   int `json:"total"`
	Leaders int `json:"leaders"`
	Admins  int `json:"admins"`
	Members int `json:"members"`
}

// JoinRequestStatistics counts a circle's join requests by status.
type JoinRequestStatistics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Withdrawn int `json:"withdrawn"`
	// ApprovalRate is approved / (approved + rejected), 0 when nothing was decided.
	ApprovalRate float64 `json:"approval_rate"`
}

// CircleStatistics is the admin overview of a circle.
type CircleStatistics struct {
	CircleID     string                `json:"circle_id"`
	Members      MemberStatistics      `json:"members"`
	JoinRequests JoinRequestStatistics `json:"join_requests"`
}

// CircleStatisticsResponse represents response for circle statistics.
type CircleStatisticsResponse struct {
	Statistics CircleStatistics `json:"statistics"`
}
