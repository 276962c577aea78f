package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminTestService is the question bank's write surface: creating courses,
// class sections and tests with their nested questions and options.
type AdminTestService interface {
	CreateCourse(req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error)
	CreateClass(req dto.ClassCreateDTO) (*dto.ClassResponseDTO, error)
	CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	GetAllTests() ([]dto.TestSummaryDTO, error)
	GetTestDetail(testID uint) (*dto.TestResponseDTO, error)
	DeleteQuestion(questionID uint) error
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	courseRepo   repository.CourseRepository
	classRepo    repository.ClassRepository
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	courseRepo repository.CourseRepository,
	classRepo repository.ClassRepository,
) AdminTestService {
	return &adminTestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		courseRepo:   courseRepo,
		classRepo:    classRepo,
	}
}

func (s *adminTestService) CreateCourse(req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error) {
	course := model.Course{
		Name:              req.Name,
		Description:       req.Description,
		IsPlacementCourse: req.IsPlacementCourse,
	}
	if err := s.courseRepo.Create(&course); err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("CreateCourse: database error")
		return nil, fmt.Errorf("database error creating course: %w", err)
	}
	var resp dto.CourseResponseDTO
	copier.Copy(&resp, &course)
	return &resp, nil
}

func (s *adminTestService) CreateClass(req dto.ClassCreateDTO) (*dto.ClassResponseDTO, error) {
	if _, err := s.courseRepo.FindByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", req.CourseID, ErrNotFound)
		}
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, &ValidationError{Fields: map[string]string{"end_time": "must be after start_time"}}
	}
	requiredLevel := req.RequiredArabicLevel
	if requiredLevel == "" {
		requiredLevel = model.RequiredLevelAny
	}
	if requiredLevel != model.RequiredLevelAny && !model.Level(requiredLevel).IsAssigned() {
		return nil, &ValidationError{Fields: map[string]string{"required_arabic_level": fmt.Sprintf("unknown level %q", requiredLevel)}}
	}

	class := model.Class{
		CourseID:            req.CourseID,
		TeacherID:           req.TeacherID,
		ClassCode:           newClassCode(),
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		Capacity:            req.Capacity,
		RequiredArabicLevel: requiredLevel,
	}
	if err := s.classRepo.Create(&class); err != nil {
		log.Error().Err(err).Uint("courseID", req.CourseID).Msg("CreateClass: database error")
		return nil, fmt.Errorf("database error creating class: %w", err)
	}
	var resp dto.ClassResponseDTO
	copier.Copy(&resp, &class)
	return &resp, nil
}

// CreateTest validates and creates a test with its nested questions and
// options in one shot. For automated grading to be meaningful the data
// has to be well formed going in: multiple choice needs at least two
// options with at least one correct, true/false exactly the True/False
// pair with one correct, and short answers carry no options at all.
func (s *adminTestService) CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	fields := make(map[string]string)

	level := model.Level(req.Level)
	if req.IsPlacementTest {
		if !level.IsAssigned() {
			fields["level"] = "a placement test requires a target level"
		}
	}
	if req.Level != "" && !level.IsValid() {
		fields["level"] = fmt.Sprintf("unknown level %q", req.Level)
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, qReq := range req.Questions {
		name := fmt.Sprintf("questions[%d]", i)
		question := model.Question{
			Text:         qReq.Text,
			QuestionType: qReq.QuestionType,
			ScorePoints:  qReq.ScorePoints,
			Stage:        qReq.Stage,
		}
		if question.Stage == "" {
			question.Stage = model.StageIntermediate
		}

		switch qReq.QuestionType {
		case model.QuestionTypeMultipleChoice:
			if len(qReq.Options) < 2 {
				fields[name] = "multiple choice requires at least two options"
				continue
			}
			correct := 0
			for _, oReq := range qReq.Options {
				if oReq.IsCorrect {
					correct++
				}
				question.Options = append(question.Options, model.Option{Text: oReq.Text, IsCorrect: oReq.IsCorrect})
			}
			if correct == 0 {
				fields[name] = "multiple choice requires at least one correct option"
				continue
			}
		case model.QuestionTypeTrueFalse:
			if err := validateTrueFalseOptions(qReq.Options); err != "" {
				fields[name] = err
				continue
			}
			for _, oReq := range qReq.Options {
				question.Options = append(question.Options, model.Option{Text: oReq.Text, IsCorrect: oReq.IsCorrect})
			}
		case model.QuestionTypeShortAnswer:
			if len(qReq.Options) > 0 {
				fields[name] = "short answer questions carry no options"
				continue
			}
		default:
			fields[name] = fmt.Sprintf("unknown question type %q", qReq.QuestionType)
			continue
		}
		questions = append(questions, question)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	// Graph edges must point at existing placement tests.
	for name, edgeID := range map[string]*uint{
		"next_test_on_success_id": req.NextTestOnSuccessID,
		"next_test_on_failure_id": req.NextTestOnFailureID,
	} {
		if edgeID == nil {
			continue
		}
		edge, err := s.testRepo.FindByID(*edgeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Fields: map[string]string{name: fmt.Sprintf("test %d does not exist", *edgeID)}}
			}
			return nil, err
		}
		if !edge.IsPlacementTest {
			return nil, &ValidationError{Fields: map[string]string{name: fmt.Sprintf("test %d is not a placement test", *edgeID)}}
		}
	}

	test := model.Test{
		Title:               req.Title,
		Description:         req.Description,
		DurationMinutes:     req.DurationMinutes,
		CourseID:            req.CourseID,
		IsPlacementTest:     req.IsPlacementTest,
		Level:               level,
		NextTestOnSuccessID: req.NextTestOnSuccessID,
		NextTestOnFailureID: req.NextTestOnFailureID,
		Questions:           questions,
	}
	if test.DurationMinutes == 0 {
		test.DurationMinutes = 60
	}

	if err := s.testRepo.Create(&test); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateTest: database error")
		return nil, fmt.Errorf("database error creating test: %w", err)
	}

	created, err := s.testRepo.FindByIDWithQuestions(test.ID)
	if err != nil {
		log.Error().Err(err).Uint("testID", test.ID).Msg("CreateTest: failed to reload created test")
		created = &test
	}

	var resp dto.TestResponseDTO
	if err := copier.Copy(&resp, created); err != nil {
		return nil, fmt.Errorf("error preparing test response: %w", err)
	}
	return &resp, nil
}

func (s *adminTestService) GetAllTests() ([]dto.TestSummaryDTO, error) {
	testsWithCount, err := s.testRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("GetAllTests: repository error")
		return nil, fmt.Errorf("error fetching tests: %w", err)
	}

	var dtos []dto.TestSummaryDTO
	for _, twc := range testsWithCount {
		dtos = append(dtos, dto.TestSummaryDTO{
			ID:              twc.Test.ID,
			Title:           twc.Test.Title,
			Description:     twc.Test.Description,
			DurationMinutes: twc.Test.DurationMinutes,
			IsPlacementTest: twc.Test.IsPlacementTest,
			Level:           string(twc.Test.Level),
			QuestionCount:   twc.QuestionCount,
			CreatedAt:       twc.Test.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *adminTestService) GetTestDetail(testID uint) (*dto.TestResponseDTO, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return nil, err
	}
	questions, err := s.questionRepo.FindByTestID(testID)
	if err != nil {
		return nil, fmt.Errorf("error fetching questions for test %d: %w", testID, err)
	}
	test.Questions = questions

	var resp dto.TestResponseDTO
	if err := copier.Copy(&resp, test); err != nil {
		return nil, fmt.Errorf("error preparing test response: %w", err)
	}
	return &resp, nil
}

func (s *adminTestService) DeleteQuestion(questionID uint) error {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
		}
		return err
	}
	if err := s.questionRepo.Delete(question.ID); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("DeleteQuestion: database error")
		return fmt.Errorf("database error deleting question: %w", err)
	}
	log.Info().Uint("questionID", questionID).Uint("testID", question.TestID).Msg("DeleteQuestion: question removed")
	return nil
}

func validateTrueFalseOptions(options []dto.OptionCreateDTO) string {
	if len(options) != 2 {
		return `true/false requires exactly the "True" and "False" options`
	}
	texts := make(map[string]bool, 2)
	correct := 0
	for _, o := range options {
		texts[o.Text] = true
		if o.IsCorrect {
			correct++
		}
	}
	if !texts["True"] || !texts["False"] {
		return `true/false options must be the literal texts "True" and "False"`
	}
	if correct != 1 {
		return "true/false requires exactly one correct option"
	}
	return ""
}

func newClassCode() string {
	return "CLS-" + strings.ToUpper(uuid.NewString()[:8])
}
