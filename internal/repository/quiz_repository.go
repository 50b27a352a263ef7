package repository

import (
	"studypulse_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// FindWithQuestions 按 order 排序题目，order 相同按 id
func (r *QuizRepository) FindWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Omit("Answers").Create(attempt).Error
}

func (r *QuizRepository) CreateAnswers(answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Create(&answers).Error
}

func (r *QuizRepository) FinalizeAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Model(attempt).
		Select("end_time", "score", "passed", "is_complete").
		Updates(attempt).Error
}

func (r *QuizRepository) FindAttempt(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&attempt, id).Error
	return &attempt, err
}

func (r *QuizRepository) CountAttempts(quizID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID).Count(&n).Error
	return n, err
}
