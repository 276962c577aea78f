package model

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	Name              string         `json:"name" gorm:"not null;uniqueIndex"`
	Description       string         `json:"description,omitempty"`
	IsPlacementCourse bool           `json:"is_placement_course" gorm:"not null;default:false"` // marks the course new placements enroll into
	Classes           []Class        `json:"classes,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
