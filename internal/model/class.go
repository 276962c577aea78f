package model

import (
	"time"

	"gorm.io/gorm"
)

// RequiredLevelAny is the wildcard: the class accepts students of any
// determined level.
const RequiredLevelAny = "any"

// Class is one scheduled section of a course: a teacher, a time slot, a
// capacity and the set of enrolled students.
type Class struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	CourseID            uint           `json:"course_id" gorm:"not null;index"`
	Course              Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	TeacherID           *uint          `json:"teacher_id,omitempty" gorm:"index"`
	ClassCode           string         `json:"class_code,omitempty" gorm:"uniqueIndex"`
	StartTime           time.Time      `json:"start_time" gorm:"not null;index"`
	EndTime             time.Time      `json:"end_time" gorm:"not null"`
	Capacity            int            `json:"capacity" gorm:"not null;default:10"`
	RequiredArabicLevel string         `json:"required_arabic_level" gorm:"type:varchar(20);not null;default:'any'"` // a Level value or "any"
	Students            []User         `json:"students,omitempty" gorm:"many2many:class_students;"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}
