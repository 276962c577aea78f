package service

import (
	"errors"
	"fmt"

	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StudentTestService builds the student-facing test listing: the placement
// entry point (if the student's level is still undetermined) plus the
// regular tests of the courses they are enrolled in, each annotated with
// the student's attempt status.
type StudentTestService interface {
	GetAvailableTests(studentID uint) (*dto.AvailableTestsDTO, error)
}

type studentTestService struct {
	testRepo   repository.TestRepository
	resultRepo repository.TestResultRepository
	userRepo   repository.UserRepository
	classRepo  repository.ClassRepository
}

func NewStudentTestService(
	testRepo repository.TestRepository,
	resultRepo repository.TestResultRepository,
	userRepo repository.UserRepository,
	classRepo repository.ClassRepository,
) StudentTestService {
	return &studentTestService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		userRepo:   userRepo,
		classRepo:  classRepo,
	}
}

func (s *studentTestService) GetAvailableTests(studentID uint) (*dto.AvailableTestsDTO, error) {
	student, err := s.userRepo.FindByID(studentID)
	if err != nil {
		return nil, wrapNotFound(err, "student %d", studentID)
	}
	if student.Role != model.RoleStudent {
		return nil, ErrPermissionDenied
	}

	listing := &dto.AvailableTestsDTO{
		DeterminedLevel: string(student.DeterminedArabicLevel),
	}

	if !student.DeterminedArabicLevel.IsAssigned() {
		entry, err := s.placementEntry(studentID)
		if err != nil {
			return nil, err
		}
		listing.PlacementEntry = entry
	}

	courseIDs, err := s.classRepo.FindCourseIDsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	regular, err := s.testRepo.FindRegularByCourseIDs(courseIDs)
	if err != nil {
		return nil, err
	}
	for _, t := range regular {
		summary := dto.TestStatusSummaryDTO{
			TestID:          t.ID,
			Title:           t.Title,
			DurationMinutes: t.DurationMinutes,
			Status:          "not_started",
		}
		existing, err := s.resultRepo.FindByTestAndStudent(t.ID, studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			summary.Status = existing.Status
			summary.ResultID = &existing.ID
		}
		listing.RegularTests = append(listing.RegularTests, summary)
	}

	return listing, nil
}

// placementEntry resolves where an unplaced student enters the graph: the
// test of their in_progress attempt, or the initial placement test. A
// missing initial test is an operator configuration problem; the listing
// degrades to no entry rather than failing.
func (s *studentTestService) placementEntry(studentID uint) (*dto.TestStatusSummaryDTO, error) {
	open, err := s.resultRepo.FindInProgressPlacementByStudent(studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		test, err := s.testRepo.FindByID(open.TestID)
		if err != nil {
			return nil, fmt.Errorf("test %d: %w", open.TestID, err)
		}
		return &dto.TestStatusSummaryDTO{
			TestID:          test.ID,
			Title:           test.Title,
			DurationMinutes: test.DurationMinutes,
			Status:          open.Status,
			ResultID:        &open.ID,
		}, nil
	}

	initial, err := s.testRepo.FindInitialPlacementTest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Msg("GetAvailableTests: no initial placement test is seeded")
			return nil, nil
		}
		return nil, err
	}
	return &dto.TestStatusSummaryDTO{
		TestID:          initial.ID,
		Title:           initial.Title,
		DurationMinutes: initial.DurationMinutes,
		Status:          "not_started",
	}, nil
}
