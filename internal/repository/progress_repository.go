package repository

import (
	"studypulse_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// InsertCompletion 依赖 (profile_id, lesson_id) 唯一索引，冲突时不写入，返回 false
func (r *ProgressRepository) InsertCompletion(progress *model.UserProgress) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProgressRepository) HasCompleted(profileID, lessonID uint) (bool, error) {
	var n int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("profile_id = ? AND lesson_id = ?", profileID, lessonID).
		Count(&n).Error
	return n > 0, err
}

func (r *ProgressRepository) CountCompletions(profileID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.UserProgress{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, err
}

// ActivityTimes 返回 since 之后的课时完成时间与已评分测验时间，profileID 为 0 时统计全站
func (r *ProgressRepository) ActivityTimes(profileID uint, since time.Time) ([]time.Time, error) {
	var completions []time.Time
	q := r.DB.Model(&model.UserProgress{}).Where("completed_at >= ?", since)
	if profileID != 0 {
		q = q.Where("profile_id = ?", profileID)
	}
	if err := q.Pluck("completed_at", &completions).Error; err != nil {
		return nil, err
	}

	var attempts []time.Time
	q = r.DB.Model(&model.QuizAttempt{}).Where("is_complete = ? AND end_time >= ?", true, since)
	if profileID != 0 {
		q = q.Where("profile_id = ?", profileID)
	}
	if err := q.Pluck("end_time", &attempts).Error; err != nil {
		return nil, err
	}

	return append(completions, attempts...), nil
}

type TopicScore struct {
	Topic        string
	AverageScore float64
}

// TopicPerformance 按主题统计已完成测验的平均分
func (r *ProgressRepository) TopicPerformance(profileID uint) ([]TopicScore, error) {
	var rows []TopicScore
	q := r.DB.Table("quiz_attempts").
		Select("learning_topics.title AS topic, AVG(quiz_attempts.score) AS average_score").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Joins("JOIN modules ON modules.id = quizzes.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Joins("JOIN learning_topics ON learning_topics.id = courses.topic_id").
		Where("quiz_attempts.is_complete = ?", true)
	if profileID != 0 {
		q = q.Where("quiz_attempts.profile_id = ?", profileID)
	}
	err := q.Group("learning_topics.title").Order("learning_topics.title").Scan(&rows).Error
	return rows, err
}
