package model

import (
	"time"

	"gorm.io/gorm"
)

// Test is one exam. Placement tests additionally carry a target level and
// two self-referencing edges that form the placement graph: where to send
// the student after a strong result and where after a weak one. The data
// model does not enforce acyclicity; the router guards against loops.
type Test struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	Title               string         `json:"title" gorm:"not null;uniqueIndex"`
	Description         string         `json:"description,omitempty"`
	DurationMinutes     int            `json:"duration_minutes" gorm:"not null;default:60"`
	CourseID            *uint          `json:"course_id,omitempty" gorm:"index"`
	Course              *Course        `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	IsPlacementTest     bool           `json:"is_placement_test" gorm:"not null;default:false;index"`
	Level               Level          `json:"level,omitempty" gorm:"type:varchar(20)"`
	NextTestOnSuccessID *uint          `json:"next_test_on_success_id,omitempty"`
	NextTestOnFailureID *uint          `json:"next_test_on_failure_id,omitempty"`
	Questions           []Question     `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// AutoGradableMaxScore sums score points over questions a machine can
// grade. Short-answer questions are excluded: they are graded by a human
// and never count toward the placement percentage.
func (t *Test) AutoGradableMaxScore() int {
	total := 0
	for _, q := range t.Questions {
		if q.QuestionType != QuestionTypeShortAnswer {
			total += q.ScorePoints
		}
	}
	return total
}
