package model

import (
	"time"
)

// StudentAnswer is one graded answer within an attempt, one row per
// (test result, question). Rows are owned by their TestResult and are
// replaced wholesale when answers are persisted.
type StudentAnswer struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	TestResultID     uint      `json:"test_result_id" gorm:"not null;index;uniqueIndex:idx_answer_result_question"`
	QuestionID       uint      `json:"question_id" gorm:"not null;index;uniqueIndex:idx_answer_result_question"`
	Question         Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOptionID *uint     `json:"selected_option_id,omitempty"`
	SelectedOption   *Option   `json:"selected_option,omitempty" gorm:"foreignKey:SelectedOptionID"`
	ShortAnswerText  string    `json:"short_answer_text,omitempty" gorm:"type:text"`
	IsCorrect        bool      `json:"is_correct" gorm:"not null;default:false"`
	AnsweredAt       time.Time `json:"answered_at" gorm:"autoCreateTime"`
}
