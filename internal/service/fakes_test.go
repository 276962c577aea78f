package service

import (
	"sort"
	"time"

	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes. They implement just enough of the gorm
// behavior the services depend on, including ErrRecordNotFound and the
// duplicate-key guard on attempt creation.

type fakeTestRepo struct {
	tests  map[uint]*model.Test
	nextID uint
}

func newFakeTestRepo(tests ...*model.Test) *fakeTestRepo {
	r := &fakeTestRepo{tests: make(map[uint]*model.Test), nextID: 1}
	for _, t := range tests {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.tests[t.ID] = t
	}
	return r
}

func (r *fakeTestRepo) Create(test *model.Test) error {
	test.ID = r.nextID
	r.nextID++
	r.tests[test.ID] = test
	return nil
}

func (r *fakeTestRepo) FindByID(id uint) (*model.Test, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTestRepo) FindByIDWithQuestions(id uint) (*model.Test, error) {
	return r.FindByID(id)
}

func (r *fakeTestRepo) FindInitialPlacementTest() (*model.Test, error) {
	ids := r.sortedIDs()
	for _, id := range ids {
		t := r.tests[id]
		if t.IsPlacementTest && t.Level == model.FloorLevel {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTestRepo) FindRegularByCourseIDs(courseIDs []uint) ([]model.Test, error) {
	wanted := make(map[uint]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	var out []model.Test
	for _, id := range r.sortedIDs() {
		t := r.tests[id]
		if !t.IsPlacementTest && t.CourseID != nil && wanted[*t.CourseID] {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTestRepo) FindAllWithQuestionCount() ([]repository.TestWithQuestionCount, error) {
	var out []repository.TestWithQuestionCount
	for _, id := range r.sortedIDs() {
		t := r.tests[id]
		out = append(out, repository.TestWithQuestionCount{Test: *t, QuestionCount: len(t.Questions)})
	}
	return out, nil
}

func (r *fakeTestRepo) sortedIDs() []uint {
	ids := make([]uint, 0, len(r.tests))
	for id := range r.tests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeQuestionRepo struct {
	testRepo *fakeTestRepo
	deleted  []uint
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	for _, test := range r.testRepo.tests {
		for i := range test.Questions {
			if test.Questions[i].ID == id {
				return &test.Questions[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) FindByTestID(testID uint) ([]model.Question, error) {
	test, ok := r.testRepo.tests[testID]
	if !ok {
		return nil, nil
	}
	return test.Questions, nil
}

func (r *fakeQuestionRepo) Delete(id uint) error {
	r.deleted = append(r.deleted, id)
	for _, test := range r.testRepo.tests {
		for i := range test.Questions {
			if test.Questions[i].ID == id {
				test.Questions = append(test.Questions[:i], test.Questions[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

type fakeResultRepo struct {
	results          map[uint]*model.TestResult
	placementTestIDs map[uint]bool
	nextID           uint
	onCreate         func(r *fakeResultRepo) // runs before the duplicate check, simulates a racing start
}

func newFakeResultRepo(placementTestIDs ...uint) *fakeResultRepo {
	r := &fakeResultRepo{
		results:          make(map[uint]*model.TestResult),
		placementTestIDs: make(map[uint]bool),
		nextID:           1,
	}
	for _, id := range placementTestIDs {
		r.placementTestIDs[id] = true
	}
	return r
}

func (r *fakeResultRepo) add(result *model.TestResult) *model.TestResult {
	if result.ID == 0 {
		result.ID = r.nextID
	}
	if result.ID >= r.nextID {
		r.nextID = result.ID + 1
	}
	r.results[result.ID] = result
	return result
}

func (r *fakeResultRepo) Create(result *model.TestResult) error {
	if r.onCreate != nil {
		hook := r.onCreate
		r.onCreate = nil
		hook(r)
	}
	for _, existing := range r.results {
		if existing.TestID == result.TestID && existing.StudentID == result.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	result.StartTime = time.Now()
	r.add(result)
	return nil
}

func (r *fakeResultRepo) Update(result *model.TestResult) error {
	r.results[result.ID] = result
	return nil
}

func (r *fakeResultRepo) FindByID(id uint) (*model.TestResult, error) {
	res, ok := r.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return res, nil
}

func (r *fakeResultRepo) FindByIDWithDetails(id uint) (*model.TestResult, error) {
	return r.FindByID(id)
}

func (r *fakeResultRepo) FindByTestAndStudent(testID, studentID uint) (*model.TestResult, error) {
	for _, res := range r.results {
		if res.TestID == testID && res.StudentID == studentID {
			return res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResultRepo) FindInProgressPlacementByStudent(studentID uint) (*model.TestResult, error) {
	for _, res := range r.results {
		if res.StudentID == studentID && res.Status == model.ResultStatusInProgress && r.placementTestIDs[res.TestID] {
			return res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResultRepo) CountCompletedPlacementByStudent(studentID uint) (int64, error) {
	var count int64
	for _, res := range r.results {
		if res.StudentID == studentID && res.Submitted() && r.placementTestIDs[res.TestID] {
			count++
		}
	}
	return count, nil
}

func (r *fakeResultRepo) CompleteWithAnswers(result *model.TestResult, score int, answers []model.StudentAnswer) error {
	now := time.Now()
	result.Score = score
	result.EndTime = &now
	result.Status = model.ResultStatusCompleted
	result.Answers = answers
	r.results[result.ID] = result
	return nil
}

type fakeUserRepo struct {
	users   map[uint]*model.User
	updates int
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.users[user.ID] = user
	r.updates++
	return nil
}

type fakeCourseRepo struct {
	courses map[uint]*model.Course
}

func newFakeCourseRepo(courses ...*model.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: make(map[uint]*model.Course)}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) Create(course *model.Course) error {
	course.ID = uint(len(r.courses) + 1)
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) FindByID(id uint) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) FindPlacementCourse() (*model.Course, error) {
	ids := make([]uint, 0, len(r.courses))
	for id := range r.courses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if r.courses[id].IsPlacementCourse {
			return r.courses[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeClassRepo struct {
	classes     map[uint]*model.Class
	enrollments map[uint][]uint // classID -> studentIDs
}

func newFakeClassRepo(classes ...*model.Class) *fakeClassRepo {
	r := &fakeClassRepo{
		classes:     make(map[uint]*model.Class),
		enrollments: make(map[uint][]uint),
	}
	for _, c := range classes {
		r.classes[c.ID] = c
	}
	return r
}

func (r *fakeClassRepo) Create(class *model.Class) error {
	class.ID = uint(len(r.classes) + 1)
	r.classes[class.ID] = class
	return nil
}

func (r *fakeClassRepo) FindByID(id uint) (*model.Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClassRepo) FindAvailableForLevel(courseID uint, level model.Level, after time.Time, studentID uint) ([]model.Class, error) {
	var out []model.Class
	for _, c := range r.classes {
		if c.CourseID != courseID {
			continue
		}
		if c.RequiredArabicLevel != string(level) && c.RequiredArabicLevel != model.RequiredLevelAny {
			continue
		}
		if !c.StartTime.After(after) {
			continue
		}
		if r.isEnrolled(c.ID, studentID) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeClassRepo) EnrollStudentIfCapacity(classID, studentID uint) (bool, error) {
	class, ok := r.classes[classID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if len(r.enrollments[classID]) >= class.Capacity {
		return false, nil
	}
	r.enrollments[classID] = append(r.enrollments[classID], studentID)
	return true, nil
}

func (r *fakeClassRepo) FindCourseIDsByStudent(studentID uint) ([]uint, error) {
	seen := make(map[uint]bool)
	var out []uint
	for classID, students := range r.enrollments {
		for _, sid := range students {
			if sid == studentID && !seen[r.classes[classID].CourseID] {
				seen[r.classes[classID].CourseID] = true
				out = append(out, r.classes[classID].CourseID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *fakeClassRepo) isEnrolled(classID, studentID uint) bool {
	for _, sid := range r.enrollments[classID] {
		if sid == studentID {
			return true
		}
	}
	return false
}

// fakeMatcher records the finalized placement calls the router makes.
type fakeMatcher struct {
	outcome *PlacementOutcome
	calls   []model.Level
}

func (m *fakeMatcher) PlaceStudent(student *model.User, level model.Level) (*PlacementOutcome, error) {
	m.calls = append(m.calls, level)
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &PlacementOutcome{Frozen: true}, nil
}

// fakeRouter records routed attempts for attempt-service tests.
type fakeRouter struct {
	outcome *RouteOutcome
	calls   int
}

func (r *fakeRouter) Route(result *model.TestResult, test *model.Test, student *model.User) (*RouteOutcome, error) {
	r.calls++
	if r.outcome != nil {
		return r.outcome, nil
	}
	return &RouteOutcome{Finalized: true, DeterminedLevel: test.Level}, nil
}
