package service

import (
	"fmt"
	"strings"

	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/model"
)

// The answer form builder: translates an ordered question list into an
// input schema, validates a submitted answer set against it and computes
// the raw score plus the answer rows to persist. Pure functions, no
// storage access.

const requiredFieldMessage = "this field is required"

// TrueFalseChoices is the literal answer space of a true_false question.
// Correctness is still resolved against the question's options so the
// right answer stays data-driven.
var TrueFalseChoices = []string{"True", "False"}

// AnswerInput is a student's raw answer to one question: an option id for
// multiple choice, or a literal value for true/false and short answers.
type AnswerInput struct {
	OptionID *uint
	Value    string
}

// GradeOutcome is the result of grading a complete, valid submission.
type GradeOutcome struct {
	Score   int
	Answers []model.StudentAnswer
}

func fieldName(questionID uint) string {
	return fmt.Sprintf("question_%d", questionID)
}

// BuildAnswerSchema maps each question to a typed field descriptor, in the
// order the questions were given. Every field is required: partially
// answered attempts are rejected outright.
func BuildAnswerSchema(questions []model.Question) []dto.AnswerFieldDTO {
	fields := make([]dto.AnswerFieldDTO, 0, len(questions))
	for _, q := range questions {
		field := dto.AnswerFieldDTO{
			QuestionID:   q.ID,
			Name:         fieldName(q.ID),
			Label:        q.Text,
			QuestionType: q.QuestionType,
			ScorePoints:  q.ScorePoints,
			Required:     true,
		}
		switch q.QuestionType {
		case model.QuestionTypeMultipleChoice:
			for _, opt := range q.Options {
				field.Choices = append(field.Choices, dto.AnswerFieldChoiceDTO{OptionID: opt.ID, Text: opt.Text})
			}
		case model.QuestionTypeTrueFalse:
			for _, text := range TrueFalseChoices {
				field.Choices = append(field.Choices, dto.AnswerFieldChoiceDTO{Text: text})
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// GradeSubmission validates answers against the question list and computes
// the raw score. Any missing or out-of-range answer fails the whole
// submission with one message per offending question; nothing is graded
// partially. Short answers are structurally validated only and always
// marked incorrect, since a human grades them later.
func GradeSubmission(questions []model.Question, answers map[uint]AnswerInput) (*GradeOutcome, error) {
	invalid := make(map[string]string)
	outcome := &GradeOutcome{}

	for _, q := range questions {
		input, ok := answers[q.ID]
		if !ok {
			invalid[fieldName(q.ID)] = requiredFieldMessage
			continue
		}

		answer := model.StudentAnswer{QuestionID: q.ID}

		switch q.QuestionType {
		case model.QuestionTypeMultipleChoice:
			opt := findOption(q.Options, input.OptionID)
			if opt == nil {
				// An option id outside the question's own answer
				// space is rejected, never silently ignored.
				invalid[fieldName(q.ID)] = requiredFieldMessage
				continue
			}
			answer.SelectedOptionID = &opt.ID
			answer.IsCorrect = opt.IsCorrect

		case model.QuestionTypeTrueFalse:
			if input.Value != "True" && input.Value != "False" {
				invalid[fieldName(q.ID)] = requiredFieldMessage
				continue
			}
			answer.ShortAnswerText = input.Value
			answer.IsCorrect = hasCorrectOptionWithText(q.Options, input.Value)

		case model.QuestionTypeShortAnswer:
			if strings.TrimSpace(input.Value) == "" {
				invalid[fieldName(q.ID)] = requiredFieldMessage
				continue
			}
			answer.ShortAnswerText = input.Value
			answer.IsCorrect = false

		default:
			invalid[fieldName(q.ID)] = fmt.Sprintf("unsupported question type %q", q.QuestionType)
			continue
		}

		if answer.IsCorrect {
			outcome.Score += q.ScorePoints
		}
		outcome.Answers = append(outcome.Answers, answer)
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	return outcome, nil
}

func findOption(options []model.Option, optionID *uint) *model.Option {
	if optionID == nil {
		return nil
	}
	for i := range options {
		if options[i].ID == *optionID {
			return &options[i]
		}
	}
	return nil
}

func hasCorrectOptionWithText(options []model.Option, text string) bool {
	for _, opt := range options {
		if opt.IsCorrect && opt.Text == text {
			return true
		}
	}
	return false
}
