package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/logger"
	"studypulse_backend/pkg/monitoring"
	"studypulse_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{DB: db, Now: time.Now}
}

// GradedAttempt 在评分记录之外附带统计与被跳过的答案
type GradedAttempt struct {
	*model.QuizAttempt
	CorrectAnswersCount int            `json:"correct_answers_count"`
	TotalQuestions      int            `json:"total_questions"`
	Skipped             []SkippedEntry `json:"skipped"`
}

// QuizView 答题用视图，不暴露正确答案
type QuizView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Module      uint           `json:"module"`
	Questions   []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Order   int          `json:"order"`
	Choices []ChoiceView `json:"choices"`
}

type ChoiceView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func (s *QuizService) GetQuiz(ctx context.Context, id uint) (*QuizView, error) {
	quiz, err := repository.NewQuizRepository(s.DB.WithContext(ctx)).FindWithQuestions(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Module:      quiz.ModuleID,
		Questions:   make([]QuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Order: q.Order, Choices: make([]ChoiceView, 0, len(q.Choices))}
		for _, c := range q.Choices {
			qv.Choices = append(qv.Choices, ChoiceView{ID: c.ID, Text: c.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// Score 保留两位小数，恰好一半时取偶数（3.125 -> 3.12）
func Score(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.RoundToEven(float64(correct)*100/float64(total)*100) / 100
}

// Grade 创建答题记录、写入答案、计算成绩与发放经验在同一事务内完成，任一步失败整体回滚。
// 题目集合在事务内读取，分母即此时的题目数量并记录在 question_count。
func (s *QuizService) Grade(ctx context.Context, profileID uint, req GradeRequest) (*GradedAttempt, error) {
	if req.QuizID == 0 {
		return nil, util.ErrMissingParameters
	}

	ctx, span := tracing.StartSpan(ctx, "quiz.grade",
		attribute.Int64("quiz.id", int64(req.QuizID)),
		attribute.Int64("profile.id", int64(profileID)),
	)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	result := &GradedAttempt{Skipped: append([]SkippedEntry{}, req.Skipped...)}
	var xpReward int

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizzes := repository.NewQuizRepository(tx)
		profiles := repository.NewProfileRepository(tx)

		quiz, err := quizzes.FindWithQuestions(req.QuizID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		if len(quiz.Questions) == 0 {
			return util.ErrEmptyQuiz
		}

		if _, err := profiles.FindByID(profileID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrProfileNotFound
			}
			return fmt.Errorf("load profile: %w", err)
		}

		choicesByQuestion := make(map[uint]map[uint]bool, len(quiz.Questions))
		for _, q := range quiz.Questions {
			choices := make(map[uint]bool, len(q.Choices))
			for _, c := range q.Choices {
				choices[c.ID] = c.IsCorrect
			}
			choicesByQuestion[q.ID] = choices
		}

		attempt := &model.QuizAttempt{
			ProfileID:     profileID,
			QuizID:        quiz.ID,
			StartTime:     s.Now(),
			QuestionCount: len(quiz.Questions),
		}
		if err := quizzes.CreateAttempt(attempt); err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}

		answered := make(map[uint]bool, len(req.Answers))
		answers := make([]model.Answer, 0, len(req.Answers))
		correct := 0
		for _, entry := range req.Answers {
			skip := func(reason SkipReason) {
				result.Skipped = append(result.Skipped, SkippedEntry{
					Key:    strconv.FormatUint(uint64(entry.QuestionID), 10),
					Value:  strconv.FormatUint(uint64(entry.ChoiceID), 10),
					Reason: reason,
				})
			}

			choices, ok := choicesByQuestion[entry.QuestionID]
			if !ok {
				skip(SkipQuestionNotInQuiz)
				continue
			}
			isCorrect, ok := choices[entry.ChoiceID]
			if !ok {
				skip(SkipChoiceNotInQuestion)
				continue
			}
			if answered[entry.QuestionID] {
				skip(SkipDuplicateQuestion)
				continue
			}
			answered[entry.QuestionID] = true

			choiceID := entry.ChoiceID
			answers = append(answers, model.Answer{
				QuizAttemptID:    attempt.ID,
				QuestionID:       entry.QuestionID,
				SelectedChoiceID: &choiceID,
				IsCorrect:        isCorrect,
			})
			if isCorrect {
				correct++
			}
		}
		if err := quizzes.CreateAnswers(answers); err != nil {
			return fmt.Errorf("create answers: %w", err)
		}

		score := Score(correct, len(quiz.Questions))
		end := s.Now()
		attempt.Score = &score
		attempt.Passed = score >= float64(quiz.PassThreshold)
		attempt.IsComplete = true
		attempt.EndTime = &end
		if err := quizzes.FinalizeAttempt(attempt); err != nil {
			return fmt.Errorf("finalize attempt: %w", err)
		}

		if attempt.Passed && quiz.XPReward > 0 {
			if err := profiles.AddXP(profileID, quiz.XPReward); err != nil {
				return fmt.Errorf("award xp: %w", err)
			}
			xpReward = quiz.XPReward
		}
		if attempt.Passed {
			if _, err := profiles.SetLevel(profileID, LevelForXP); err != nil {
				return fmt.Errorf("update level: %w", err)
			}
		}

		attempt.Answers = answers
		result.QuizAttempt = attempt
		result.CorrectAnswersCount = correct
		result.TotalQuestions = len(quiz.Questions)
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.QuizAttemptsGraded.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()
	if xpReward > 0 {
		monitoring.XPAwarded.WithLabelValues("quiz").Add(float64(xpReward))
	}
	if len(result.Skipped) > 0 {
		logger.Log.Warn("Skipped quiz answers",
			zap.Uint("attempt_id", result.ID),
			zap.Uint("quiz_id", req.QuizID),
			zap.Any("skipped", result.Skipped),
		)
	}
	logger.Log.Info("Quiz attempt graded",
		zap.Uint("attempt_id", result.ID),
		zap.Uint("profile_id", profileID),
		zap.Float64("score", *result.Score),
		zap.Bool("passed", result.Passed),
	)
	return result, nil
}
