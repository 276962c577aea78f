package repository

import (
	"time"

	"github.com/hsalhab/mustawa/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository interface {
	Create(class *model.Class) error
	FindByID(id uint) (*model.Class, error)
	// FindAvailableForLevel lists future sections of a course matching the
	// level (or the "any" wildcard) that the student is not already in,
	// soonest start first.
	FindAvailableForLevel(courseID uint, level model.Level, after time.Time, studentID uint) ([]model.Class, error)
	// EnrollStudentIfCapacity adds the student under a row lock so two
	// concurrent placements cannot both take the last seat. Returns false
	// when the section is already full.
	EnrollStudentIfCapacity(classID, studentID uint) (bool, error)
	FindCourseIDsByStudent(studentID uint) ([]uint, error)
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(class *model.Class) error {
	return r.db.Create(class).Error
}

func (r *classRepository) FindByID(id uint) (*model.Class, error) {
	var class model.Class
	if err := r.db.First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) FindAvailableForLevel(courseID uint, level model.Level, after time.Time, studentID uint) ([]model.Class, error) {
	enrolledIDs := r.db.Table("class_students").
		Select("class_id").
		Where("user_id = ?", studentID)

	var classes []model.Class
	err := r.db.
		Where("course_id = ?", courseID).
		Where("required_arabic_level IN ?", []string{string(level), model.RequiredLevelAny}).
		Where("start_time > ?", after).
		Where("id NOT IN (?)", enrolledIDs).
		Order("start_time ASC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepository) EnrollStudentIfCapacity(classID, studentID uint) (bool, error) {
	enrolled := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var class model.Class
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, classID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Table("class_students").Where("class_id = ?", classID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(class.Capacity) {
			return nil
		}
		if err := tx.Exec("INSERT INTO class_students (class_id, user_id) VALUES (?, ?)", classID, studentID).Error; err != nil {
			return err
		}
		enrolled = true
		return nil
	})
	return enrolled, err
}

func (r *classRepository) FindCourseIDsByStudent(studentID uint) ([]uint, error) {
	var courseIDs []uint
	err := r.db.Model(&model.Class{}).
		Distinct("course_id").
		Joins("JOIN class_students ON class_students.class_id = classes.id").
		Where("class_students.user_id = ?", studentID).
		Pluck("course_id", &courseIDs).Error
	return courseIDs, err
}
