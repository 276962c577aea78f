package service

import (
	"errors"
	"fmt"

	"github.com/hsalhab/mustawa/config"
	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService drives the test attempt lifecycle: starting or resuming
// an attempt, submitting answers (which grades them and, for placement
// tests, invokes the router) and reading back a scored result.
type AttemptService interface {
	StartOrResumeTest(studentID, testID uint) (*dto.StartTestResponseDTO, error)
	SubmitAnswers(studentID, resultID uint, answers []dto.AnswerSubmissionDTO) (*dto.SubmitAnswersResponseDTO, error)
	GetResultDetail(studentID, resultID uint) (*dto.TestResultDetailDTO, error)
}

type attemptService struct {
	testRepo   repository.TestRepository
	resultRepo repository.TestResultRepository
	userRepo   repository.UserRepository
	router     PlacementRouter
	cfg        config.Placement
}

func NewAttemptService(
	testRepo repository.TestRepository,
	resultRepo repository.TestResultRepository,
	userRepo repository.UserRepository,
	router PlacementRouter,
	cfg config.Placement,
) AttemptService {
	return &attemptService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		userRepo:   userRepo,
		router:     router,
		cfg:        cfg,
	}
}

// StartOrResumeTest opens an attempt for the student on the given test.
// At most one attempt exists per (test, student): a second start resumes
// an in_progress attempt and a submitted one is rejected. For placement
// tests two more gates apply: a student whose level is already determined
// may not re-enter the graph, and a student with any in_progress placement
// attempt is always resumed at that exact test, even if they asked for a
// different one.
func (s *attemptService) StartOrResumeTest(studentID, testID uint) (*dto.StartTestResponseDTO, error) {
	student, err := s.userRepo.FindByID(studentID)
	if err != nil {
		return nil, wrapNotFound(err, "student %d", studentID)
	}
	if student.Role != model.RoleStudent {
		return nil, ErrPermissionDenied
	}

	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		return nil, wrapNotFound(err, "test %d", testID)
	}

	var result *model.TestResult
	resumed := false
	redirected := false

	if test.IsPlacementTest {
		if student.DeterminedArabicLevel.IsAssigned() {
			return nil, ErrAlreadyFinalized
		}
		open, err := s.resultRepo.FindInProgressPlacementByStudent(studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if open != nil && err == nil {
			resumed = true
			result = open
			if open.TestID != testID {
				// One placement attempt at a time: route the student
				// back to the test they are mid-way through.
				redirected = true
				test, err = s.testRepo.FindByIDWithQuestions(open.TestID)
				if err != nil {
					return nil, wrapNotFound(err, "test %d", open.TestID)
				}
				log.Info().
					Uint("studentID", studentID).
					Uint("requestedTestID", testID).
					Uint("activeTestID", open.TestID).
					Msg("StartOrResumeTest: student has another placement attempt in progress, resuming it instead")
			}
		}
	} else {
		existing, err := s.resultRepo.FindByTestAndStudent(testID, studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && err == nil {
			if existing.Submitted() {
				return nil, ErrAlreadySubmitted
			}
			resumed = true
			result = existing
		}
	}

	if len(test.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	if result == nil {
		result = &model.TestResult{
			TestID:    test.ID,
			StudentID: studentID,
			Status:    model.ResultStatusInProgress,
		}
		if err := s.resultRepo.Create(result); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a concurrent start; the unique (test, student)
				// constraint guarantees the winner's row exists.
				existing, findErr := s.resultRepo.FindByTestAndStudent(test.ID, studentID)
				if findErr != nil {
					return nil, findErr
				}
				if existing.Submitted() {
					return nil, ErrAlreadySubmitted
				}
				resumed = true
				result = existing
			} else {
				return nil, fmt.Errorf("failed to create test attempt: %w", err)
			}
		}
		if !resumed {
			log.Info().
				Uint("studentID", studentID).
				Uint("testID", test.ID).
				Bool("placement", test.IsPlacementTest).
				Msg("StartOrResumeTest: new attempt started")
		}
	}

	var attemptDTO dto.TestResultDTO
	if err := copier.Copy(&attemptDTO, result); err != nil {
		return nil, fmt.Errorf("error preparing attempt response: %w", err)
	}

	return &dto.StartTestResponseDTO{
		Attempt:         attemptDTO,
		TestID:          test.ID,
		TestTitle:       test.Title,
		DurationMinutes: test.DurationMinutes,
		IsPlacementTest: test.IsPlacementTest,
		Resumed:         resumed,
		Redirected:      redirected,
		Questions:       BuildAnswerSchema(test.Questions),
	}, nil
}

// SubmitAnswers grades a full answer set and completes the attempt. The
// whole submission is rejected on any validation error; a submitted
// attempt is immutable, so a resubmission is rejected without touching
// score or answer rows. Placement attempts then pass through the router.
func (s *attemptService) SubmitAnswers(studentID, resultID uint, answers []dto.AnswerSubmissionDTO) (*dto.SubmitAnswersResponseDTO, error) {
	result, err := s.resultRepo.FindByID(resultID)
	if err != nil {
		return nil, wrapNotFound(err, "attempt %d", resultID)
	}
	if result.StudentID != studentID {
		return nil, ErrNotOwner
	}
	if result.Submitted() {
		return nil, ErrAlreadySubmitted
	}

	test, err := s.testRepo.FindByIDWithQuestions(result.TestID)
	if err != nil {
		return nil, wrapNotFound(err, "test %d", result.TestID)
	}

	inputs := make(map[uint]AnswerInput, len(answers))
	for _, a := range answers {
		inputs[a.QuestionID] = AnswerInput{OptionID: a.OptionID, Value: a.Value}
	}

	graded, err := GradeSubmission(test.Questions, inputs)
	if err != nil {
		return nil, err
	}

	if err := s.resultRepo.CompleteWithAnswers(result, graded.Score, graded.Answers); err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}
	log.Info().
		Uint("studentID", studentID).
		Uint("attemptID", result.ID).
		Int("score", graded.Score).
		Msg("SubmitAnswers: attempt completed")

	resp := &dto.SubmitAnswersResponseDTO{}

	if test.IsPlacementTest {
		student, err := s.userRepo.FindByID(studentID)
		if err != nil {
			return nil, wrapNotFound(err, "student %d", studentID)
		}
		outcome, err := s.router.Route(result, test, student)
		if err != nil {
			return nil, fmt.Errorf("placement routing failed: %w", err)
		}
		resp.Routing = routingDTO(outcome)
	} else {
		maxScore := test.AutoGradableMaxScore()
		percentage := 0.0
		if maxScore > 0 {
			percentage = float64(result.Score) / float64(maxScore) * 100
		}
		result.Passed = boolPtr(percentage >= s.cfg.RegularPassThreshold)
		if err := s.resultRepo.Update(result); err != nil {
			return nil, err
		}
	}

	var attemptDTO dto.TestResultDTO
	if err := copier.Copy(&attemptDTO, result); err != nil {
		return nil, fmt.Errorf("error preparing submission response: %w", err)
	}
	resp.Attempt = attemptDTO
	return resp, nil
}

// GetResultDetail returns the scored summary of one attempt, owner-only.
func (s *attemptService) GetResultDetail(studentID, resultID uint) (*dto.TestResultDetailDTO, error) {
	result, err := s.resultRepo.FindByIDWithDetails(resultID)
	if err != nil {
		return nil, wrapNotFound(err, "attempt %d", resultID)
	}
	if result.StudentID != studentID {
		return nil, ErrNotOwner
	}

	test, err := s.testRepo.FindByIDWithQuestions(result.TestID)
	if err != nil {
		return nil, wrapNotFound(err, "test %d", result.TestID)
	}

	var detail dto.TestResultDetailDTO
	if err := copier.Copy(&detail, result); err != nil {
		return nil, fmt.Errorf("error preparing result detail: %w", err)
	}
	detail.TestTitle = test.Title

	maxScore := test.AutoGradableMaxScore()
	detail.MaxPossibleScore = maxScore
	if maxScore > 0 && result.Submitted() {
		detail.ScorePercentage = float64(result.Score) / float64(maxScore) * 100
	}
	if result.EndTime != nil {
		detail.CompletionSeconds = result.EndTime.Sub(result.StartTime).Seconds()
	}

	detail.Answers = make([]dto.StudentAnswerDTO, 0, len(result.Answers))
	for _, ans := range result.Answers {
		var ansDTO dto.StudentAnswerDTO
		copier.Copy(&ansDTO, &ans)
		ansDTO.QuestionText = ans.Question.Text
		ansDTO.QuestionType = ans.Question.QuestionType
		ansDTO.ScorePoints = ans.Question.ScorePoints
		if ans.SelectedOption != nil {
			ansDTO.SelectedOptionText = ans.SelectedOption.Text
		}
		detail.Answers = append(detail.Answers, ansDTO)
	}

	return &detail, nil
}

func routingDTO(outcome *RouteOutcome) *dto.RoutingOutcomeDTO {
	d := &dto.RoutingOutcomeDTO{
		PercentageScore: outcome.PercentageScore,
		Passed:          outcome.Passed,
		Finalized:       outcome.Finalized,
		DeterminedLevel: string(outcome.DeterminedLevel),
		NextTestID:      outcome.NextTestID,
	}
	if outcome.Placement != nil {
		d.Placement = &dto.PlacementOutcomeDTO{
			Frozen:        outcome.Placement.Frozen,
			CourseMissing: outcome.Placement.CourseMissing,
		}
		if outcome.Placement.EnrolledClass != nil {
			d.Placement.EnrolledClassID = &outcome.Placement.EnrolledClass.ID
			d.Placement.ClassCode = outcome.Placement.EnrolledClass.ClassCode
			d.Placement.ClassStartTime = &outcome.Placement.EnrolledClass.StartTime
		}
	}
	return d
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
