package repository

import (
	"github.com/hsalhab/mustawa/internal/model"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(course *model.Course) error
	FindByID(id uint) (*model.Course, error)
	FindPlacementCourse() (*model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindPlacementCourse returns the course flagged as the placement course.
// Exactly one is expected to exist; the first by id wins if several are
// flagged.
func (r *courseRepository) FindPlacementCourse() (*model.Course, error) {
	var course model.Course
	err := r.db.
		Where("is_placement_course = ?", true).
		Order("id ASC").
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}
