package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/logger"
	"studypulse_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// 简单等级计算：每200XP升一级，从1级开始
	XPPerLevel      = 200
	leaderboardSize = 10
)

func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/XPPerLevel
}

type ProgressService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db, Now: time.Now}
}

type CompletionResult struct {
	AlreadyCompleted bool   `json:"already_completed"`
	XPAwarded        int    `json:"xp_awarded"`
	NewTotalXP       int    `json:"new_total_xp"`
	Username         string `json:"-"`
	LessonTitle      string `json:"-"`
}

// CompleteLesson 插入完成记录与发放经验在同一事务；唯一索引冲突视为已完成
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*CompletionResult, error) {
	result := &CompletionResult{}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := repository.NewUserRepository(tx).FindByID(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.Profile == nil {
			return util.ErrProfileNotFound
		}
		result.Username = user.Username

		lesson, err := repository.NewContentRepository(tx).FindLessonByID(lessonID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
		if err != nil {
			return err
		}
		result.LessonTitle = lesson.Title

		created, err := repository.NewProgressRepository(tx).InsertCompletion(&model.UserProgress{
			ProfileID:   user.Profile.ID,
			LessonID:    lesson.ID,
			CompletedAt: s.Now(),
		})
		if err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}

		profiles := repository.NewProfileRepository(tx)
		if !created {
			result.AlreadyCompleted = true
			p, err := profiles.FindByID(user.Profile.ID)
			if err != nil {
				return err
			}
			result.NewTotalXP = p.XP
			return nil
		}

		if lesson.XPValue > 0 {
			if err := profiles.AddXP(user.Profile.ID, lesson.XPValue); err != nil {
				return fmt.Errorf("award xp: %w", err)
			}
		}
		total, err := profiles.SetLevel(user.Profile.ID, LevelForXP)
		if err != nil {
			return fmt.Errorf("update level: %w", err)
		}
		result.XPAwarded = lesson.XPValue
		result.NewTotalXP = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		monitoring.XPAwarded.WithLabelValues("lesson").Add(float64(result.XPAwarded))
		logger.Log.Info("Lesson completed",
			zap.Uint("user_id", userID),
			zap.Uint("lesson_id", lessonID),
			zap.Int("xp_awarded", result.XPAwarded),
		)
	}
	return result, nil
}

type TopicPerformance struct {
	Topic       string  `json:"topic"`
	Performance float64 `json:"performance"`
}

type Graph struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type TrackerData struct {
	Leaderboard      []model.Profile    `json:"leaderboard"`
	MyBadges         []model.UserBadge  `json:"my_badges"`
	TopicPerformance []TopicPerformance `json:"topic_performance"`
	WeeklyGraph      Graph              `json:"weekly_graph"`
	MonthlyGraph     Graph              `json:"monthly_graph"`
}

// Tracker 匿名访问时 profileID 为 0，返回全站统计且徽章为空
func (s *ProgressService) Tracker(ctx context.Context, profileID uint) (*TrackerData, error) {
	db := s.DB.WithContext(ctx)
	data := &TrackerData{
		MyBadges:         []model.UserBadge{},
		TopicPerformance: []TopicPerformance{},
	}

	leaders, err := repository.NewProfileRepository(db).FindTopByXP(leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	data.Leaderboard = leaders

	if profileID != 0 {
		badges, err := repository.NewBadgeRepository(db).FindByProfile(profileID)
		if err != nil {
			return nil, fmt.Errorf("badges: %w", err)
		}
		data.MyBadges = badges
	}

	progress := repository.NewProgressRepository(db)
	scores, err := progress.TopicPerformance(profileID)
	if err != nil {
		return nil, fmt.Errorf("topic performance: %w", err)
	}
	for _, sc := range scores {
		data.TopicPerformance = append(data.TopicPerformance, TopicPerformance{
			Topic:       sc.Topic,
			Performance: math.Round(sc.AverageScore*100) / 100,
		})
	}

	now := s.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	times, err := progress.ActivityTimes(profileID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	data.WeeklyGraph = weeklyGraph(now, times)
	data.MonthlyGraph = monthlyGraph(now, times)
	return data, nil
}

// weeklyGraph 最近 7 天（含今天）每天的活动数
func weeklyGraph(now time.Time, times []time.Time) Graph {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	g := Graph{Labels: make([]string, 7), Data: make([]int, 7)}
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6)
		g.Labels[i] = day.Format("Mon")
	}
	for _, t := range times {
		t = t.In(now.Location())
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		idx := 6 - int(today.Sub(d).Hours()/24+0.5)
		if idx >= 0 && idx < 7 {
			g.Data[idx]++
		}
	}
	return g
}

// monthlyGraph 最近 6 个自然月（含本月）每月的活动数
func monthlyGraph(now time.Time, times []time.Time) Graph {
	g := Graph{Labels: make([]string, 6), Data: make([]int, 6)}
	for i := 0; i < 6; i++ {
		g.Labels[i] = now.AddDate(0, i-5, 1-now.Day()).Format("Jan")
	}
	current := now.Year()*12 + int(now.Month())
	for _, t := range times {
		t = t.In(now.Location())
		idx := 5 - (current - (t.Year()*12 + int(t.Month())))
		if idx >= 0 && idx < 6 {
			g.Data[idx]++
		}
	}
	return g
}
