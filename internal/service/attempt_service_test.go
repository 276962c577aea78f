package service

import (
	"testing"
	"time"

	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attemptFixture struct {
	svc        AttemptService
	testRepo   *fakeTestRepo
	resultRepo *fakeResultRepo
	userRepo   *fakeUserRepo
	router     *fakeRouter
}

func newAttemptFixture(tests ...*model.Test) *attemptFixture {
	testRepo := newFakeTestRepo(tests...)
	var placementIDs []uint
	for id, test := range testRepo.tests {
		if test.IsPlacementTest {
			placementIDs = append(placementIDs, id)
		}
	}
	resultRepo := newFakeResultRepo(placementIDs...)
	userRepo := newFakeUserRepo(
		&model.User{ID: 7, Username: "amal", Role: model.RoleStudent, IsActive: true},
		&model.User{ID: 8, Username: "basim", Role: model.RoleTeacher},
	)
	router := &fakeRouter{}
	return &attemptFixture{
		svc:        NewAttemptService(testRepo, resultRepo, userRepo, router, placementConfig()),
		testRepo:   testRepo,
		resultRepo: resultRepo,
		userRepo:   userRepo,
		router:     router,
	}
}

func regularTest(id, courseID uint) *model.Test {
	return &model.Test{
		ID:              id,
		Title:           "unit quiz",
		DurationMinutes: 30,
		CourseID:        &courseID,
		Questions: []model.Question{
			mcQuestion(id*100+1, 5, 1, 1, 2),
			mcQuestion(id*100+2, 5, 3, 3, 4),
		},
	}
}

func TestStartOrResumeTestNewAttempt(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))

	resp, err := f.svc.StartOrResumeTest(7, 1)
	require.NoError(t, err)

	assert.False(t, resp.Resumed)
	assert.False(t, resp.Redirected)
	assert.Equal(t, uint(1), resp.TestID)
	assert.Equal(t, "unit quiz", resp.TestTitle)
	assert.Equal(t, 30, resp.DurationMinutes)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, model.ResultStatusInProgress, resp.Attempt.Status)

	stored, err := f.resultRepo.FindByTestAndStudent(1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ResultStatusInProgress, stored.Status)
}

func TestStartOrResumeTestResumesInProgressAttempt(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))
	f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})

	resp, err := f.svc.StartOrResumeTest(7, 1)
	require.NoError(t, err)

	assert.True(t, resp.Resumed)
	assert.Len(t, f.resultRepo.results, 1)
}

func TestStartOrResumeTestRejectsSubmittedRegularAttempt(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))
	f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusCompleted})

	_, err := f.svc.StartOrResumeTest(7, 1)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestStartOrResumeTestRejectsNonStudents(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))

	_, err := f.svc.StartOrResumeTest(8, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestStartOrResumeTestUnknownIDs(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))

	_, err := f.svc.StartOrResumeTest(404, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.StartOrResumeTest(7, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartOrResumeTestRejectsEmptyTest(t *testing.T) {
	f := newAttemptFixture(&model.Test{ID: 1, Title: "empty"})

	_, err := f.svc.StartOrResumeTest(7, 1)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStartOrResumeTestPlacementGates(t *testing.T) {
	t.Run("determined level blocks re-entry", func(t *testing.T) {
		f := newAttemptFixture(placementTest(1, model.LevelA1))
		f.userRepo.users[7].DeterminedArabicLevel = model.LevelB1

		_, err := f.svc.StartOrResumeTest(7, 1)
		assert.ErrorIs(t, err, ErrAlreadyFinalized)
	})

	t.Run("open attempt on another placement test redirects", func(t *testing.T) {
		f := newAttemptFixture(placementTest(1, model.LevelA1), placementTest(2, model.LevelA2))
		f.resultRepo.add(&model.TestResult{TestID: 2, StudentID: 7, Status: model.ResultStatusInProgress})

		resp, err := f.svc.StartOrResumeTest(7, 1)
		require.NoError(t, err)

		assert.True(t, resp.Resumed)
		assert.True(t, resp.Redirected)
		assert.Equal(t, uint(2), resp.TestID)
	})

	t.Run("open attempt on the same test resumes without redirect", func(t *testing.T) {
		f := newAttemptFixture(placementTest(1, model.LevelA1))
		f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})

		resp, err := f.svc.StartOrResumeTest(7, 1)
		require.NoError(t, err)

		assert.True(t, resp.Resumed)
		assert.False(t, resp.Redirected)
	})
}

func TestStartOrResumeTestLosingAConcurrentStartResumes(t *testing.T) {
	f := newAttemptFixture(regularTest(1, 1))
	f.resultRepo.onCreate = func(r *fakeResultRepo) {
		// The racing request wins between our existence check and insert.
		r.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})
	}

	resp, err := f.svc.StartOrResumeTest(7, 1)
	require.NoError(t, err)

	assert.True(t, resp.Resumed)
	assert.Len(t, f.resultRepo.results, 1)
}

func submissionFor(test *model.Test, correct bool) []dto.AnswerSubmissionDTO {
	answers := make([]dto.AnswerSubmissionDTO, 0, len(test.Questions))
	for _, q := range test.Questions {
		var pick *model.Option
		for i := range q.Options {
			if q.Options[i].IsCorrect == correct {
				pick = &q.Options[i]
				break
			}
		}
		answers = append(answers, dto.AnswerSubmissionDTO{QuestionID: q.ID, OptionID: &pick.ID})
	}
	return answers
}

func TestSubmitAnswersRegularTest(t *testing.T) {
	t.Run("passing score", func(t *testing.T) {
		test := regularTest(1, 1)
		f := newAttemptFixture(test)
		result := f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})

		resp, err := f.svc.SubmitAnswers(7, result.ID, submissionFor(test, true))
		require.NoError(t, err)

		assert.Equal(t, 10, resp.Attempt.Score)
		assert.Equal(t, model.ResultStatusCompleted, resp.Attempt.Status)
		assert.Nil(t, resp.Routing)
		require.NotNil(t, result.Passed)
		assert.True(t, *result.Passed)
		assert.Zero(t, f.router.calls)
	})

	t.Run("failing score", func(t *testing.T) {
		test := regularTest(1, 1)
		f := newAttemptFixture(test)
		result := f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})

		_, err := f.svc.SubmitAnswers(7, result.ID, submissionFor(test, false))
		require.NoError(t, err)

		require.NotNil(t, result.Passed)
		assert.False(t, *result.Passed)
	})
}

func TestSubmitAnswersPlacementTestRoutes(t *testing.T) {
	test := placementTest(1, model.LevelA1)
	f := newAttemptFixture(test)
	result := f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})
	f.router.outcome = &RouteOutcome{
		PercentageScore: 100,
		Passed:          true,
		NextTestID:      uintPtr(2),
	}

	resp, err := f.svc.SubmitAnswers(7, result.ID, submissionFor(test, true))
	require.NoError(t, err)

	assert.Equal(t, 1, f.router.calls)
	require.NotNil(t, resp.Routing)
	require.NotNil(t, resp.Routing.NextTestID)
	assert.Equal(t, uint(2), *resp.Routing.NextTestID)
	assert.False(t, resp.Routing.Finalized)
}

func TestSubmitAnswersGuards(t *testing.T) {
	test := regularTest(1, 1)
	f := newAttemptFixture(test)
	result := f.resultRepo.add(&model.TestResult{TestID: 1, StudentID: 7, Status: model.ResultStatusInProgress})

	t.Run("unknown attempt", func(t *testing.T) {
		_, err := f.svc.SubmitAnswers(7, 404, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong owner", func(t *testing.T) {
		_, err := f.svc.SubmitAnswers(8, result.ID, nil)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("invalid submission leaves the attempt open", func(t *testing.T) {
		_, err := f.svc.SubmitAnswers(7, result.ID, nil)
		_, isValidation := AsValidationError(err)
		assert.True(t, isValidation)
		assert.Equal(t, model.ResultStatusInProgress, result.Status)
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		_, err := f.svc.SubmitAnswers(7, result.ID, submissionFor(test, true))
		require.NoError(t, err)
		scoreAfterFirst := result.Score

		_, err = f.svc.SubmitAnswers(7, result.ID, submissionFor(test, false))
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.Equal(t, scoreAfterFirst, result.Score)
	})
}

func TestGetResultDetail(t *testing.T) {
	test := regularTest(1, 1)
	f := newAttemptFixture(test)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(25 * time.Minute)
	q := test.Questions[0]
	result := f.resultRepo.add(&model.TestResult{
		TestID:    1,
		StudentID: 7,
		StartTime: start,
		EndTime:   &end,
		Score:     5,
		Status:    model.ResultStatusCompleted,
		Answers: []model.StudentAnswer{
			{
				QuestionID:       q.ID,
				Question:         q,
				SelectedOptionID: &q.Options[0].ID,
				SelectedOption:   &q.Options[0],
				IsCorrect:        true,
			},
		},
	})

	detail, err := f.svc.GetResultDetail(7, result.ID)
	require.NoError(t, err)

	assert.Equal(t, "unit quiz", detail.TestTitle)
	assert.Equal(t, 10, detail.MaxPossibleScore)
	assert.InDelta(t, 50.0, detail.ScorePercentage, 0.001)
	assert.InDelta(t, 1500.0, detail.CompletionSeconds, 0.001)
	require.Len(t, detail.Answers, 1)
	assert.True(t, detail.Answers[0].IsCorrect)

	_, err = f.svc.GetResultDetail(8, result.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}
