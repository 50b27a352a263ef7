package testutil

import (
	"path/filepath"
	"testing"

	"studypulse_backend/internal/model"
	"studypulse_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 每个测试一个临时 sqlite 文件库，已迁移
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path)), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string, staff bool) *model.User {
	tb.Helper()
	u := &model.User{
		Email:    email,
		Username: email,
		IsStaff:  staff,
		Profile:  &model.Profile{Level: 1},
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedModule 建一个 topic/course/module 链
func SeedModule(tb testing.TB, db *gorm.DB, topicTitle string) *model.Module {
	tb.Helper()
	topic := &model.LearningTopic{Title: topicTitle}
	if err := db.Create(topic).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	course := &model.Course{TopicID: topic.ID, Title: topicTitle + " course", Description: "d"}
	if err := db.Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	m := &model.Module{CourseID: course.ID, Title: topicTitle + " module"}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, db *gorm.DB, moduleID uint, xp int) *model.Lesson {
	tb.Helper()
	l := &model.Lesson{ModuleID: moduleID, Title: "lesson", ContentType: model.ContentText, XPValue: xp}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedQuiz 创建 n 道题，每题两个选项，第一个为正确答案
func SeedQuiz(tb testing.TB, db *gorm.DB, moduleID uint, n, threshold, reward int) *model.Quiz {
	tb.Helper()
	q := &model.Quiz{ModuleID: moduleID, Title: "quiz", PassThreshold: threshold, XPReward: reward}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, model.Question{
			Text:  "question",
			Order: i + 1,
			Choices: []model.Choice{
				{Text: "right", IsCorrect: true},
				{Text: "wrong", IsCorrect: false},
			},
		})
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

// CorrectChoice / WrongChoice 对应 SeedQuiz 的选项布局
func CorrectChoice(q model.Question) uint {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.ID
		}
	}
	return 0
}

func WrongChoice(q model.Question) uint {
	for _, c := range q.Choices {
		if !c.IsCorrect {
			return c.ID
		}
	}
	return 0
}
