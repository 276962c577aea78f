package service

import (
	"testing"
	"time"

	"github.com/hsalhab/mustawa/config"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matcherNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMatcherFixture(cfg config.Placement, courseRepo *fakeCourseRepo, classRepo *fakeClassRepo, userRepo *fakeUserRepo) *classMatcher {
	return &classMatcher{
		courseRepo: courseRepo,
		classRepo:  classRepo,
		userRepo:   userRepo,
		cfg:        cfg,
		now:        func() time.Time { return matcherNow },
	}
}

func section(id, courseID uint, level string, startInDays int, capacity int) *model.Class {
	return &model.Class{
		ID:                  id,
		CourseID:            courseID,
		ClassCode:           "CLS-TEST",
		StartTime:           matcherNow.AddDate(0, 0, startInDays),
		EndTime:             matcherNow.AddDate(0, 3, startInDays),
		Capacity:            capacity,
		RequiredArabicLevel: level,
	}
}

func TestPlaceStudentEnrollsSoonestMatchingSection(t *testing.T) {
	course := &model.Course{ID: 1, Name: "Arabic Placement", IsPlacementCourse: true}
	classRepo := newFakeClassRepo(
		section(1, 1, string(model.LevelB1), 20, 10),
		section(2, 1, string(model.LevelB1), 5, 10), // soonest match
		section(3, 1, model.RequiredLevelAny, 10, 10),
		section(4, 1, string(model.LevelC1), 2, 10), // wrong level
	)
	student := &model.User{ID: 7, Role: model.RoleStudent, DeterminedArabicLevel: model.LevelB1}
	userRepo := newFakeUserRepo(student)
	m := newMatcherFixture(config.Placement{}, newFakeCourseRepo(course), classRepo, userRepo)

	outcome, err := m.PlaceStudent(student, model.LevelB1)
	require.NoError(t, err)

	require.NotNil(t, outcome.EnrolledClass)
	assert.Equal(t, uint(2), outcome.EnrolledClass.ID)
	assert.False(t, outcome.Frozen)
	assert.True(t, student.IsActive)
	assert.Equal(t, []uint{student.ID}, classRepo.enrollments[2])
}

func TestPlaceStudentSkipsFullSection(t *testing.T) {
	course := &model.Course{ID: 1, IsPlacementCourse: true}
	classRepo := newFakeClassRepo(
		section(1, 1, string(model.LevelA2), 3, 1),
		section(2, 1, model.RequiredLevelAny, 8, 5),
	)
	classRepo.enrollments[1] = []uint{55} // first section full

	student := &model.User{ID: 7, Role: model.RoleStudent}
	m := newMatcherFixture(config.Placement{}, newFakeCourseRepo(course), classRepo, newFakeUserRepo(student))

	outcome, err := m.PlaceStudent(student, model.LevelA2)
	require.NoError(t, err)

	require.NotNil(t, outcome.EnrolledClass)
	assert.Equal(t, uint(2), outcome.EnrolledClass.ID)
	assert.True(t, student.IsActive)
}

func TestPlaceStudentIgnoresPastSections(t *testing.T) {
	course := &model.Course{ID: 1, IsPlacementCourse: true}
	classRepo := newFakeClassRepo(
		section(1, 1, model.RequiredLevelAny, -2, 10), // already started
	)
	student := &model.User{ID: 7, Role: model.RoleStudent, IsActive: true}
	m := newMatcherFixture(config.Placement{}, newFakeCourseRepo(course), classRepo, newFakeUserRepo(student))

	outcome, err := m.PlaceStudent(student, model.LevelA1)
	require.NoError(t, err)

	assert.True(t, outcome.Frozen)
	assert.Nil(t, outcome.EnrolledClass)
	assert.False(t, student.IsActive)
}

func TestPlaceStudentFreezesAccountWhenNothingFits(t *testing.T) {
	course := &model.Course{ID: 1, IsPlacementCourse: true}
	student := &model.User{ID: 7, Role: model.RoleStudent, IsActive: true}
	userRepo := newFakeUserRepo(student)
	m := newMatcherFixture(config.Placement{}, newFakeCourseRepo(course), newFakeClassRepo(), userRepo)

	outcome, err := m.PlaceStudent(student, model.LevelC2)
	require.NoError(t, err)

	assert.True(t, outcome.Frozen)
	assert.False(t, student.IsActive)
	assert.Equal(t, 1, userRepo.updates)
}

func TestPlaceStudentNoPlacementCourseLeavesAccountAlone(t *testing.T) {
	student := &model.User{ID: 7, Role: model.RoleStudent, IsActive: true}
	userRepo := newFakeUserRepo(student)
	m := newMatcherFixture(config.Placement{}, newFakeCourseRepo(), newFakeClassRepo(), userRepo)

	outcome, err := m.PlaceStudent(student, model.LevelB2)
	require.NoError(t, err)

	assert.True(t, outcome.CourseMissing)
	assert.False(t, outcome.Frozen)
	assert.True(t, student.IsActive)
	assert.Zero(t, userRepo.updates)
}

func TestPlaceStudentConfiguredCourseID(t *testing.T) {
	t.Run("takes precedence over the flag", func(t *testing.T) {
		flagged := &model.Course{ID: 1, IsPlacementCourse: true}
		configured := &model.Course{ID: 2}
		classRepo := newFakeClassRepo(
			section(1, 1, model.RequiredLevelAny, 3, 10),
			section(2, 2, model.RequiredLevelAny, 5, 10),
		)
		student := &model.User{ID: 7, Role: model.RoleStudent}
		cfg := config.Placement{PlacementCourseID: 2}
		m := newMatcherFixture(cfg, newFakeCourseRepo(flagged, configured), classRepo, newFakeUserRepo(student))

		outcome, err := m.PlaceStudent(student, model.LevelA1)
		require.NoError(t, err)
		require.NotNil(t, outcome.EnrolledClass)
		assert.Equal(t, uint(2), outcome.EnrolledClass.ID)
	})

	t.Run("falls back to the flag when the id is stale", func(t *testing.T) {
		flagged := &model.Course{ID: 1, IsPlacementCourse: true}
		classRepo := newFakeClassRepo(section(1, 1, model.RequiredLevelAny, 3, 10))
		student := &model.User{ID: 7, Role: model.RoleStudent}
		cfg := config.Placement{PlacementCourseID: 99}
		m := newMatcherFixture(cfg, newFakeCourseRepo(flagged), classRepo, newFakeUserRepo(student))

		outcome, err := m.PlaceStudent(student, model.LevelA1)
		require.NoError(t, err)
		require.NotNil(t, outcome.EnrolledClass)
		assert.Equal(t, uint(1), outcome.EnrolledClass.ID)
	})
}
