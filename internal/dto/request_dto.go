package dto

import "time"

// --- Admin requests ---

type CourseCreateDTO struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description,omitempty"`
	IsPlacementCourse bool   `json:"is_placement_course"`
}

type ClassCreateDTO struct {
	CourseID            uint      `json:"course_id" binding:"required"`
	TeacherID           *uint     `json:"teacher_id"`
	StartTime           time.Time `json:"start_time" binding:"required"`
	EndTime             time.Time `json:"end_time" binding:"required"`
	Capacity            int       `json:"capacity" binding:"required,gt=0"`
	RequiredArabicLevel string    `json:"required_arabic_level"`
}

type OptionCreateDTO struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionCreateDTO struct {
	Text         string            `json:"text" binding:"required"`
	QuestionType string            `json:"question_type" binding:"required,oneof=multiple_choice true_false short_answer"`
	ScorePoints  int               `json:"score_points" binding:"required,gt=0"`
	Stage        string            `json:"stage" binding:"omitempty,oneof=beginner intermediate advanced"`
	Options      []OptionCreateDTO `json:"options" binding:"omitempty,dive"`
}

// TestCreateDTO creates a test with all of its questions and options.
// Placement tests carry a target level and optional graph edges.
type TestCreateDTO struct {
	Title               string              `json:"title" binding:"required"`
	Description         string              `json:"description,omitempty"`
	DurationMinutes     int                 `json:"duration_minutes" binding:"omitempty,gt=0"`
	CourseID            *uint               `json:"course_id"`
	IsPlacementTest     bool                `json:"is_placement_test"`
	Level               string              `json:"level"`
	NextTestOnSuccessID *uint               `json:"next_test_on_success_id"`
	NextTestOnFailureID *uint               `json:"next_test_on_failure_id"`
	Questions           []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// --- Student requests ---

// AnswerSubmissionDTO is one answer within a submission: option_id for
// multiple choice, value for true/false ("True"/"False") and short answers.
type AnswerSubmissionDTO struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	OptionID   *uint  `json:"option_id"`
	Value      string `json:"value"`
}

// SubmitAnswersDTO carries the full answer set for one attempt. StudentID
// identifies the caller until the surrounding shell provides auth.
type SubmitAnswersDTO struct {
	StudentID uint                  `json:"student_id" binding:"required"`
	Answers   []AnswerSubmissionDTO `json:"answers" binding:"required,dive"`
}
