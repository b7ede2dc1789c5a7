package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// CourseRepository exposes persistence helpers for courses and lessons.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uint) (models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uint) (models.Lesson, error)
	ListLessons(ctx context.Context, courseID uint) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
	DeleteLesson(ctx context.Context, id uint) error
	CountLessons(ctx context.Context, courseID uint) (int64, error)
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

type courseRepository struct {
	db *gorm.DB
}

func (r *courseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return dbFor(ctx, r.db).Create(course).Error
}

func (r *courseRepository) GetCourse(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := dbFor(ctx, r.db).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := dbFor(ctx, r.db).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	return dbFor(ctx, r.db).Save(course).Error
}

// DeleteCourse removes the course and its lessons in one transaction. The
// cascade is explicit; lesson progress rows are left for history.
func (r *courseRepository) DeleteCourse(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, id).Error
	})
}

func (r *courseRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return dbFor(ctx, r.db).Create(lesson).Error
}

func (r *courseRepository) GetLesson(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := dbFor(ctx, r.db).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *courseRepository) ListLessons(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := dbFor(ctx, r.db).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *courseRepository) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	return dbFor(ctx, r.db).Save(lesson).Error
}

func (r *courseRepository) DeleteLesson(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.Lesson{}, id).Error
}

func (r *courseRepository) CountLessons(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
