// Package model defines join requests and their lifecycle.
package model

import "time"

// Status is the lifecycle state of a join request.
type Status string

// Join request states. Only StatusPending may transition.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Terminal reports whether s is a decided state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}

// JoinRequest is a user's application to join a circle.
//
// Name, University, Grade and Email are a snapshot of the applicant's profile
// at submit time. They are never refreshed, so reviewers see what the
// applicant submitted even after later profile edits.
type JoinRequest struct {
	RequestID   string     `gorm:"primaryKey;column:request_id;type:varchar(36)"                       json:"request_id"`
	CircleID    string     `gorm:"column:circle_id;type:varchar(36);not null;index:idx_join_requests_circle_status" json:"circle_id"`
	UserID      string     `gorm:"column:user_id;type:varchar(255);not null;index"                     json:"user_id"`
	Name        string     `gorm:"column:name;type:varchar(255)"                                       json:"name"`
	University  string     `gorm:"column:university;type:varchar(255)"                                 json:"university"`
	Grade       string     `gorm:"column:grade;type:varchar(64)"                                       json:"grade"`
	Email       string     `gorm:"column:email;type:varchar(255)"                                      json:"email"`
	Status      Status     `gorm:"column:status;type:varchar(16);not null;index:idx_join_requests_circle_status" json:"status"`
	RequestedAt time.Time  `gorm:"column:requested_at;not null"                                        json:"requested_at"`
	DecidedAt   *time.Time `gorm:"column:decided_at"                                                   json:"decided_at,omitempty"`
	DecidedBy   string     `gorm:"column:decided_by;type:varchar(255)"                                 json:"decided_by,omitempty"`
}

// TableName specifies the table name for GORM.
func (JoinRequest) TableName() string {
	return "join_requests"
}

// Snapshot holds the applicant display fields copied onto a request.
type Snapshot struct {
	Name       string `json:"name"       binding:"max=255"`
	University string `json:"university" binding:"max=255"`
	Grade      string `json:"grade"      binding:"max=64"`
	Email      string `json:"email"      binding:"omitempty,email,max=255"`
}
