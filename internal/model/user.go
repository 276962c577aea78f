package model

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User mirrors the account record owned by the surrounding application
// shell. This service reads Role and DeterminedArabicLevel and writes
// DeterminedArabicLevel and IsActive; everything else belongs to the shell.
type User struct {
	ID                    uint      `gorm:"primarykey" json:"id"`
	Username              string    `json:"username" gorm:"not null;uniqueIndex"`
	FullName              string    `json:"full_name,omitempty"`
	Role                  string    `json:"role" gorm:"not null;default:'student'"`
	DeterminedArabicLevel Level     `json:"determined_arabic_level" gorm:"type:varchar(20);not null;default:'unassigned'"`
	IsActive              bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
