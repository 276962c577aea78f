package repository

import (
	"time"

	"github.com/hsalhab/mustawa/internal/model"
	"gorm.io/gorm"
)

type TestResultRepository interface {
	Create(result *model.TestResult) error
	Update(result *model.TestResult) error
	FindByID(id uint) (*model.TestResult, error)
	FindByIDWithDetails(id uint) (*model.TestResult, error)
	FindByTestAndStudent(testID, studentID uint) (*model.TestResult, error)
	FindInProgressPlacementByStudent(studentID uint) (*model.TestResult, error)
	CountCompletedPlacementByStudent(studentID uint) (int64, error)
	CompleteWithAnswers(result *model.TestResult, score int, answers []model.StudentAnswer) error
}

type testResultRepository struct {
	db *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) Create(result *model.TestResult) error {
	return r.db.Create(result).Error
}

func (r *testResultRepository) Update(result *model.TestResult) error {
	return r.db.Save(result).Error
}

func (r *testResultRepository) FindByID(id uint) (*model.TestResult, error) {
	var result model.TestResult
	if err := r.db.First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByIDWithDetails(id uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.
		Preload("Test").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("student_answers.question_id ASC")
		}).
		Preload("Answers.Question").
		Preload("Answers.SelectedOption").
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByTestAndStudent(testID, studentID uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.
		Where("test_id = ? AND student_id = ?", testID, studentID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindInProgressPlacementByStudent returns the student's open placement
// attempt, if any. The at-most-one-concurrent-placement-attempt invariant
// makes the newest row the only row.
func (r *testResultRepository) FindInProgressPlacementByStudent(studentID uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.
		Joins("JOIN tests ON tests.id = test_results.test_id").
		Where("test_results.student_id = ? AND test_results.status = ? AND tests.is_placement_test = ?",
			studentID, model.ResultStatusInProgress, true).
		Order("test_results.start_time DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) CountCompletedPlacementByStudent(studentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.TestResult{}).
		Joins("JOIN tests ON tests.id = test_results.test_id").
		Where("test_results.student_id = ? AND test_results.status IN ? AND tests.is_placement_test = ?",
			studentID, []string{model.ResultStatusCompleted, model.ResultStatusFinalized}, true).
		Count(&count).Error
	return count, err
}

// CompleteWithAnswers moves an attempt from in_progress to completed in a
// single transaction: any previous answer rows are replaced wholesale and
// the score, end time and status land atomically with them.
func (r *testResultRepository) CompleteWithAnswers(result *model.TestResult, score int, answers []model.StudentAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_result_id = ?", result.ID).Delete(&model.StudentAnswer{}).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].TestResultID = result.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		now := time.Now()
		result.Score = score
		result.EndTime = &now
		result.Status = model.ResultStatusCompleted
		return tx.Model(&model.TestResult{}).
			Where("id = ?", result.ID).
			Updates(map[string]interface{}{
				"score":    score,
				"end_time": now,
				"status":   model.ResultStatusCompleted,
			}).Error
	})
}
