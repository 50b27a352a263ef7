package repository

import (
	"studypulse_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) catalog() *gorm.DB {
	return r.DB.
		Preload("Topic").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		})
}

func (r *ContentRepository) ListCourses() ([]model.Course, error) {
	var courses []model.Course
	err := r.catalog().Order("id").Find(&courses).Error
	return courses, err
}

func (r *ContentRepository) FindCourseByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.catalog().First(&course, id).Error
	return &course, err
}

func (r *ContentRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *ContentRepository) FindTopicByTitle(title string) (*model.LearningTopic, error) {
	var topic model.LearningTopic
	err := r.DB.Where("title = ?", title).First(&topic).Error
	return &topic, err
}

func (r *ContentRepository) CreateTopic(topic *model.LearningTopic) error {
	return r.DB.Create(topic).Error
}

// CreateCourse 连同嵌套的模块、课时、测验一起写入
func (r *ContentRepository) CreateCourse(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *ContentRepository) DeleteTopic(id uint) error {
	return r.DB.Delete(&model.LearningTopic{}, id).Error
}
