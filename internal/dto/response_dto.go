package dto

import (
	"time"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// --- Admin responses ---

type CourseResponseDTO struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	IsPlacementCourse bool      `json:"is_placement_course"`
	CreatedAt         time.Time `json:"created_at"`
}

type ClassResponseDTO struct {
	ID                  uint      `json:"id"`
	CourseID            uint      `json:"course_id"`
	TeacherID           *uint     `json:"teacher_id,omitempty"`
	ClassCode           string    `json:"class_code"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Capacity            int       `json:"capacity"`
	RequiredArabicLevel string    `json:"required_arabic_level"`
	CreatedAt           time.Time `json:"created_at"`
}

type OptionResponseDTO struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionResponseDTO struct {
	ID           uint                `json:"id"`
	TestID       uint                `json:"test_id"`
	Text         string              `json:"text"`
	QuestionType string              `json:"question_type"`
	ScorePoints  int                 `json:"score_points"`
	Stage        string              `json:"stage"`
	Options      []OptionResponseDTO `json:"options,omitempty"`
}

type TestResponseDTO struct {
	ID                  uint                  `json:"id"`
	Title               string                `json:"title"`
	Description         string                `json:"description,omitempty"`
	DurationMinutes     int                   `json:"duration_minutes"`
	CourseID            *uint                 `json:"course_id,omitempty"`
	IsPlacementTest     bool                  `json:"is_placement_test"`
	Level               string                `json:"level,omitempty"`
	NextTestOnSuccessID *uint                 `json:"next_test_on_success_id,omitempty"`
	NextTestOnFailureID *uint                 `json:"next_test_on_failure_id,omitempty"`
	Questions           []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

type TestSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	IsPlacementTest bool      `json:"is_placement_test"`
	Level           string    `json:"level,omitempty"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// --- Student responses ---

// TestResultDTO is the attempt as exposed to its owner.
type TestResultDTO struct {
	ID                         uint       `json:"id"`
	TestID                     uint       `json:"test_id"`
	StudentID                  uint       `json:"student_id"`
	StartTime                  time.Time  `json:"start_time"`
	EndTime                    *time.Time `json:"end_time,omitempty"`
	Score                      int        `json:"score"`
	Passed                     *bool      `json:"passed,omitempty"`
	DeterminedLevelAtThisStage string     `json:"determined_level_at_this_stage"`
	IsFinalPlacementResult     bool       `json:"is_final_placement_result"`
	Status                     string     `json:"status"`
}

// AnswerFieldChoiceDTO is one selectable value within a choice field.
type AnswerFieldChoiceDTO struct {
	OptionID uint   `json:"option_id,omitempty"`
	Text     string `json:"text"`
}

// AnswerFieldDTO describes one input of the dynamically built answer form.
type AnswerFieldDTO struct {
	QuestionID   uint                   `json:"question_id"`
	Name         string                 `json:"name"`
	Label        string                 `json:"label"`
	QuestionType string                 `json:"question_type"`
	ScorePoints  int                    `json:"score_points"`
	Required     bool                   `json:"required"`
	Choices      []AnswerFieldChoiceDTO `json:"choices,omitempty"`
}

// StartTestResponseDTO is the attempt plus the input schema the student
// fills in. Redirected is set when the student asked for one placement
// test but was resumed at another already in progress.
type StartTestResponseDTO struct {
	Attempt         TestResultDTO    `json:"attempt"`
	TestID          uint             `json:"test_id"`
	TestTitle       string           `json:"test_title"`
	DurationMinutes int              `json:"duration_minutes"`
	IsPlacementTest bool             `json:"is_placement_test"`
	Resumed         bool             `json:"resumed"`
	Redirected      bool             `json:"redirected"`
	Questions       []AnswerFieldDTO `json:"questions"`
}

type PlacementOutcomeDTO struct {
	EnrolledClassID *uint      `json:"enrolled_class_id,omitempty"`
	ClassCode       string     `json:"class_code,omitempty"`
	ClassStartTime  *time.Time `json:"class_start_time,omitempty"`
	Frozen          bool       `json:"frozen"`
	CourseMissing   bool       `json:"course_missing"`
}

type RoutingOutcomeDTO struct {
	PercentageScore float64              `json:"percentage_score"`
	Passed          bool                 `json:"passed"`
	Finalized       bool                 `json:"finalized"`
	DeterminedLevel string               `json:"determined_level,omitempty"`
	NextTestID      *uint                `json:"next_test_id,omitempty"`
	Placement       *PlacementOutcomeDTO `json:"placement,omitempty"`
}

type SubmitAnswersResponseDTO struct {
	Attempt TestResultDTO      `json:"attempt"`
	Routing *RoutingOutcomeDTO `json:"routing,omitempty"`
}

type StudentAnswerDTO struct {
	QuestionID         uint   `json:"question_id"`
	QuestionText       string `json:"question_text"`
	QuestionType       string `json:"question_type"`
	ScorePoints        int    `json:"score_points"`
	SelectedOptionID   *uint  `json:"selected_option_id,omitempty"`
	SelectedOptionText string `json:"selected_option_text,omitempty"`
	ShortAnswerText    string `json:"short_answer_text,omitempty"`
	IsCorrect          bool   `json:"is_correct"`
}

type TestResultDetailDTO struct {
	ID                         uint               `json:"id"`
	TestID                     uint               `json:"test_id"`
	TestTitle                  string             `json:"test_title"`
	StudentID                  uint               `json:"student_id"`
	StartTime                  time.Time          `json:"start_time"`
	EndTime                    *time.Time         `json:"end_time,omitempty"`
	Score                      int                `json:"score"`
	MaxPossibleScore           int                `json:"max_possible_score"`
	ScorePercentage            float64            `json:"score_percentage"`
	CompletionSeconds          float64            `json:"completion_seconds,omitempty"`
	Passed                     *bool              `json:"passed,omitempty"`
	DeterminedLevelAtThisStage string             `json:"determined_level_at_this_stage"`
	IsFinalPlacementResult     bool               `json:"is_final_placement_result"`
	Status                     string             `json:"status"`
	Answers                    []StudentAnswerDTO `json:"answers"`
}

// TestStatusSummaryDTO is one row of the student's test listing.
type TestStatusSummaryDTO struct {
	TestID          uint   `json:"test_id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	ResultID        *uint  `json:"result_id,omitempty"`
}

// AvailableTestsDTO is the student's view of what they can take next.
type AvailableTestsDTO struct {
	DeterminedLevel string                 `json:"determined_level"`
	PlacementEntry  *TestStatusSummaryDTO  `json:"placement_entry,omitempty"`
	RegularTests    []TestStatusSummaryDTO `json:"regular_tests,omitempty"`
}
