// Package model defines user profiles and their circle links.
package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a user profile. JoinedCircleIDs and AdminCircleIDs are
// materialised from user_circle_links and are not columns.
type User struct {
	UserID          string    `gorm:"primaryKey;column:user_id;type:varchar(255)" json:"user_id"`
	Name            string    `gorm:"column:name;type:varchar(255)"               json:"name"`
	Email           string    `gorm:"column:email;type:varchar(255)"              json:"email"`
	University      string    `gorm:"column:university;type:varchar(255)"         json:"university"`
	Grade           string    `gorm:"column:grade;type:varchar(64)"               json:"grade"`
	ProfileImageURL string    `gorm:"column:profile_image_url;type:text"          json:"profile_image_url"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"                  json:"-"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"                  json:"-"`

	JoinedCircleIDs []string `gorm:"-" json:"joined_circle_ids"`
	AdminCircleIDs  []string `gorm:"-" json:"admin_circle_ids"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// LinkKind distinguishes the two circle lists kept on a profile.
type LinkKind string

// Link kinds.
const (
	LinkJoined LinkKind = "joined"
	LinkAdmin  LinkKind = "admin"
)

// CircleLink places a circle in one of a user's circle lists.
type CircleLink struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(255)"`
	CircleID  string    `gorm:"primaryKey;column:circle_id;type:varchar(36);index"`
	Kind      LinkKind  `gorm:"primaryKey;column:kind;type:varchar(16)"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for GORM.
func (CircleLink) TableName() string {
	return "user_circle_links"
}
