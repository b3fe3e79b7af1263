// Package model defines circle member records and the role hierarchy.
package model

import "time"

// Member is a user's role assignment within a circle.
type Member struct {
	CircleID   string    `gorm:"primaryKey;column:circle_id;type:varchar(36)"                    json:"circle_id"`
	UserID     string    `gorm:"primaryKey;column:user_id;type:varchar(255);index:idx_members_user" json:"user_id"`
	Role       Role      `gorm:"column:role;type:varchar(16);not null"                           json:"role"`
	JoinedAt   time.Time `gorm:"column:joined_at;not null"                                       json:"joined_at"`
	AssignedAt time.Time `gorm:"column:assigned_at;not null"                                     json:"assigned_at"`
	AssignedBy string    `gorm:"column:assigned_by;type:varchar(255)"                            json:"assigned_by"`
}

// TableName specifies the table name for GORM.
func (Member) TableName() string {
	return "circle_members"
}
