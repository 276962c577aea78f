package model

import (
	"time"

	"gorm.io/gorm"
)

// Option is one answer choice of a multiple-choice or true/false question.
// True/false questions keep their two answers as options with texts "True"
// and "False" so correctness stays data-driven.
type Option struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Text       string         `json:"text" gorm:"not null"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
