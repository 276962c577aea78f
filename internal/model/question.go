package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
)

const (
	StageBeginner     = "beginner"
	StageIntermediate = "intermediate"
	StageAdvanced     = "advanced"
)

type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	TestID       uint           `json:"test_id" gorm:"not null;index"`
	Text         string         `json:"text" gorm:"type:text;not null"`
	QuestionType string         `json:"question_type" gorm:"type:varchar(20);not null;default:'multiple_choice'"`
	ScorePoints  int            `json:"score_points" gorm:"not null;default:1"`
	Stage        string         `json:"stage" gorm:"type:varchar(20);not null;default:'intermediate'"` // filtering/reporting only, never scoring
	Options      []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
