package model

// SubmitRequest is the body of POST /circles/:circle_id/join-requests.
// Omitted fields fall back to the applicant's stored profile.
type SubmitRequest struct {
	Snapshot
}

// JoinRequestResponse wraps a single join request.
type JoinRequestResponse struct {
	JoinRequest *JoinRequest `json:"join_request"`
}

// ListPendingResponse is the pending request queue of a circle.
type ListPendingResponse struct {
	CircleID string         `json:"circle_id"`
	Requests []*JoinRequest `json:"requests"`
}
