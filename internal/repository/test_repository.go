package repository

import (
	"github.com/hsalhab/mustawa/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	Create(test *model.Test) error
	FindByID(id uint) (*model.Test, error)
	FindByIDWithQuestions(id uint) (*model.Test, error)
	FindInitialPlacementTest() (*model.Test, error)
	FindRegularByCourseIDs(courseIDs []uint) ([]model.Test, error)
	FindAllWithQuestionCount() ([]TestWithQuestionCount, error)
}

type TestWithQuestionCount struct {
	model.Test
	QuestionCount int
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(test *model.Test) error {
	// GORM creates the nested questions and options along with the test.
	return r.db.Create(test).Error
}

func (r *testRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.id ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// FindInitialPlacementTest returns the entry point of the placement graph:
// the placement test targeting the floor level.
func (r *testRepository) FindInitialPlacementTest() (*model.Test, error) {
	var test model.Test
	err := r.db.
		Where("is_placement_test = ? AND level = ?", true, model.FloorLevel).
		Order("id ASC").
		First(&test).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindRegularByCourseIDs(courseIDs []uint) ([]model.Test, error) {
	var tests []model.Test
	if len(courseIDs) == 0 {
		return tests, nil
	}
	err := r.db.
		Where("is_placement_test = ? AND course_id IN ?", false, courseIDs).
		Order("created_at DESC").
		Find(&tests).Error
	return tests, err
}

func (r *testRepository) FindAllWithQuestionCount() ([]TestWithQuestionCount, error) {
	var results []TestWithQuestionCount
	err := r.db.Model(&model.Test{}).
		Select("tests.*, (SELECT COUNT(*) FROM questions WHERE questions.test_id = tests.id AND questions.deleted_at IS NULL) as question_count").
		Where("tests.deleted_at IS NULL").
		Order("tests.created_at DESC").
		Scan(&results).Error
	return results, err
}
