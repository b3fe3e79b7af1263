// Package model defines the circle entity.
package model

import "time"

// Circle is a university club. LeaderID, LeaderName, ContactInfo and
// UniversityName are copied from the leader's profile when leadership
// changes and are not refreshed on later profile edits.
type Circle struct {
	CircleID       string    `gorm:"primaryKey;column:circle_id;type:varchar(36)"        json:"circle_id"`
	Name           string    `gorm:"column:name;type:varchar(255);not null"              json:"name"`
	LeaderID       string    `gorm:"column:leader_id;type:varchar(255);not null;index"   json:"leader_id"`
	LeaderName     string    `gorm:"column:leader_name;type:varchar(255)"                json:"leader_name"`
	ContactInfo    string    `gorm:"column:contact_info;type:varchar(255)"               json:"contact_info"`
	UniversityName string    `gorm:"column:university_name;type:varchar(255)"            json:"university_name"`
	Description    string    `gorm:"column:description;type:text"                        json:"description"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"                          json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"                          json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Circle) TableName() string {
	return "circles"
}

// LeaderFields are the denormalised leader columns written on transfer.
type LeaderFields struct {
	LeaderID    string
	LeaderName  string
	ContactInfo string
	// UniversityName is left untouched when empty.
	UniversityName string
}
