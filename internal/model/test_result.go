package model

import (
	"time"
)

const (
	ResultStatusInProgress = "in_progress"
	ResultStatusCompleted  = "completed"
	ResultStatusFinalized  = "finalized"
)

// TestResult is one student's single attempt at one test. The composite
// unique index is the concurrency guard: two simultaneous starts cannot
// both create a row, the loser resumes the winner's attempt.
//
// Lifecycle: in_progress -> completed (answers submitted and graded)
// -> finalized (placement router decided this is the terminal result).
// Regular tests stop at completed. There is no way back to in_progress.
type TestResult struct {
	ID                         uint            `gorm:"primarykey" json:"id"`
	TestID                     uint            `json:"test_id" gorm:"not null;index;uniqueIndex:idx_result_test_student"`
	Test                       Test            `json:"test,omitempty" gorm:"foreignKey:TestID"`
	StudentID                  uint            `json:"student_id" gorm:"not null;index;uniqueIndex:idx_result_test_student"`
	Student                    User            `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	StartTime                  time.Time       `json:"start_time" gorm:"autoCreateTime"`
	EndTime                    *time.Time      `json:"end_time,omitempty"`
	Score                      int             `json:"score"`
	Passed                     *bool           `json:"passed,omitempty"`
	DeterminedLevelAtThisStage Level           `json:"determined_level_at_this_stage" gorm:"type:varchar(20);not null;default:'unassigned'"`
	IsFinalPlacementResult     bool            `json:"is_final_placement_result" gorm:"not null;default:false"`
	Status                     string          `json:"status" gorm:"type:varchar(20);not null;default:'in_progress'"`
	Answers                    []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:TestResultID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// Submitted reports whether the attempt has left in_progress.
func (r *TestResult) Submitted() bool {
	return r.Status == ResultStatusCompleted || r.Status == ResultStatusFinalized
}
