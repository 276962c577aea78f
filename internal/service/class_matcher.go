package service

import (
	"errors"
	"time"

	"github.com/hsalhab/mustawa/config"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PlacementOutcome reports what happened to a student after their level
// finalized: enrolled into a class, frozen pending manual placement, or
// untouched because no placement course is configured.
type PlacementOutcome struct {
	EnrolledClass *model.Class
	Frozen        bool
	CourseMissing bool
}

// ClassMatcher places a student with a finalized level into a class
// section of the placement course.
type ClassMatcher interface {
	PlaceStudent(student *model.User, level model.Level) (*PlacementOutcome, error)
}

type classMatcher struct {
	courseRepo repository.CourseRepository
	classRepo  repository.ClassRepository
	userRepo   repository.UserRepository
	cfg        config.Placement
	now        func() time.Time
}

func NewClassMatcher(
	courseRepo repository.CourseRepository,
	classRepo repository.ClassRepository,
	userRepo repository.UserRepository,
	cfg config.Placement,
) ClassMatcher {
	return &classMatcher{
		courseRepo: courseRepo,
		classRepo:  classRepo,
		userRepo:   userRepo,
		cfg:        cfg,
		now:        time.Now,
	}
}

// PlaceStudent searches future sections of the placement course whose
// required level matches the determined level or "any", soonest start
// first, and enrolls the student into the first one with a free seat.
// First fit, not best fit: the tie-break is observable enrollment policy.
// With no fitting section the account is frozen pending manual placement;
// an over-capacity or mismatched section is never used.
func (m *classMatcher) PlaceStudent(student *model.User, level model.Level) (*PlacementOutcome, error) {
	course, err := m.resolvePlacementCourse()
	if err != nil {
		if errors.Is(err, ErrNoPlacementCourse) {
			log.Warn().Uint("studentID", student.ID).Msg("PlaceStudent: no placement course configured, leaving account unchanged")
			return &PlacementOutcome{CourseMissing: true}, nil
		}
		return nil, err
	}

	candidates, err := m.classRepo.FindAvailableForLevel(course.ID, level, m.now(), student.ID)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		enrolled, err := m.classRepo.EnrollStudentIfCapacity(candidates[i].ID, student.ID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			// Full by the time we locked it; try the next section.
			continue
		}
		student.IsActive = true
		if err := m.userRepo.Update(student); err != nil {
			return nil, err
		}
		log.Info().
			Uint("studentID", student.ID).
			Uint("classID", candidates[i].ID).
			Str("level", string(level)).
			Msg("PlaceStudent: student enrolled into class")
		return &PlacementOutcome{EnrolledClass: &candidates[i]}, nil
	}

	student.IsActive = false
	if err := m.userRepo.Update(student); err != nil {
		return nil, err
	}
	log.Warn().
		Uint("studentID", student.ID).
		Str("level", string(level)).
		Msg("PlaceStudent: no suitable class found, account frozen pending manual placement")
	return &PlacementOutcome{Frozen: true}, nil
}

func (m *classMatcher) resolvePlacementCourse() (*model.Course, error) {
	if m.cfg.PlacementCourseID != 0 {
		course, err := m.courseRepo.FindByID(m.cfg.PlacementCourseID)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Configured id points nowhere; fall through to the flag.
	}
	course, err := m.courseRepo.FindPlacementCourse()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPlacementCourse
		}
		return nil, err
	}
	return course, nil
}
