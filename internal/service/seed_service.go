package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedCatalog 开发环境内容导入文件的结构
type SeedCatalog struct {
	Badges []SeedBadge `yaml:"badges"`
	Topics []SeedTopic `yaml:"topics"`
}

type SeedBadge struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	IconEmoji   string `yaml:"icon_emoji"`
}

type SeedTopic struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Courses     []SeedCourse `yaml:"courses"`
}

type SeedCourse struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Modules     []SeedModule `yaml:"modules"`
}

type SeedModule struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Order       int          `yaml:"order"`
	Lessons     []SeedLesson `yaml:"lessons"`
	Quizzes     []SeedQuiz   `yaml:"quizzes"`
}

type SeedLesson struct {
	Title          string            `yaml:"title"`
	ContentType    model.ContentType `yaml:"content_type"`
	TextContent    string            `yaml:"text_content"`
	YouTubeVideoID string            `yaml:"youtube_video_id"`
	ExternalURL    string            `yaml:"external_url"`
	Order          int               `yaml:"order"`
	XPValue        *int              `yaml:"xp_value"`
}

type SeedQuiz struct {
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	PassThreshold *int           `yaml:"pass_threshold"`
	XPReward      *int           `yaml:"xp_reward"`
	Questions     []SeedQuestion `yaml:"questions"`
}

type SeedQuestion struct {
	Text    string       `yaml:"text"`
	Order   int          `yaml:"order"`
	Choices []SeedChoice `yaml:"choices"`
}

type SeedChoice struct {
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"is_correct"`
}

type SeedReport struct {
	Badges         int
	TopicsCreated  int
	CoursesCreated int
	CoursesSkipped int
}

// DecodeSeedCatalog 拒绝未知字段，避免拼写错误被静默忽略
func DecodeSeedCatalog(r io.Reader) (*SeedCatalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog SeedCatalog
	if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return &catalog, nil
}

func LoadSeedCatalog(path string) (*SeedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeSeedCatalog(bytes.NewReader(data))
}

func invalidSeed(format string, args ...interface{}) error {
	return &util.DetailError{Err: util.ErrInvalidContent, Detail: fmt.Sprintf(format, args...)}
}

// Validate 每道题必须恰好一个正确选项
func (c *SeedCatalog) Validate() error {
	for _, b := range c.Badges {
		if strings.TrimSpace(b.Name) == "" {
			return invalidSeed("badge name is required")
		}
	}
	for _, t := range c.Topics {
		if strings.TrimSpace(t.Title) == "" {
			return invalidSeed("topic title is required")
		}
		for _, course := range t.Courses {
			if strings.TrimSpace(course.Title) == "" {
				return invalidSeed("course title is required (topic %q)", t.Title)
			}
			for _, m := range course.Modules {
				if err := m.validate(course.Title); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (m SeedModule) validate(course string) error {
	if strings.TrimSpace(m.Title) == "" {
		return invalidSeed("module title is required (course %q)", course)
	}
	for _, l := range m.Lessons {
		ct := l.ContentType
		if ct == "" {
			ct = model.ContentText
		}
		if !ct.Valid() {
			return invalidSeed("lesson %q: unknown content_type %q", l.Title, l.ContentType)
		}
		if ct == model.ContentYouTube && l.YouTubeVideoID == "" {
			return invalidSeed("lesson %q: youtube_video_id is required", l.Title)
		}
		if ct == model.ContentExternalLink && l.ExternalURL == "" {
			return invalidSeed("lesson %q: external_url is required", l.Title)
		}
		if l.XPValue != nil && *l.XPValue < 0 {
			return invalidSeed("lesson %q: xp_value must not be negative", l.Title)
		}
	}
	for _, q := range m.Quizzes {
		if q.PassThreshold != nil && (*q.PassThreshold < 0 || *q.PassThreshold > 100) {
			return invalidSeed("quiz %q: pass_threshold must be between 0 and 100", q.Title)
		}
		if q.XPReward != nil && *q.XPReward < 0 {
			return invalidSeed("quiz %q: xp_reward must not be negative", q.Title)
		}
		for _, question := range q.Questions {
			correct := 0
			for _, c := range question.Choices {
				if c.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				return fmt.Errorf("quiz %q question %q has %d correct choices: %w", q.Title, question.Text, correct, util.ErrInvalidQuestionChoices)
			}
		}
	}
	return nil
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// zeroFix 显式写 0 的字段，插入后需单独更新，否则会落到列默认值
type zeroFix struct {
	table  string
	id     *uint
	column string
}

func (m SeedModule) toModel() model.Module {
	out := model.Module{Title: m.Title, Description: m.Description, Order: m.Order}
	for _, l := range m.Lessons {
		ct := l.ContentType
		if ct == "" {
			ct = model.ContentText
		}
		lesson := model.Lesson{
			Title:          l.Title,
			ContentType:    ct,
			TextContent:    optionalText(l.TextContent),
			YouTubeVideoID: optionalText(l.YouTubeVideoID),
			ExternalURL:    optionalText(l.ExternalURL),
			Order:          l.Order,
		}
		if l.XPValue != nil {
			lesson.XPValue = *l.XPValue
		}
		out.Lessons = append(out.Lessons, lesson)
	}
	for _, q := range m.Quizzes {
		quiz := model.Quiz{Title: q.Title, Description: q.Description}
		if q.PassThreshold != nil {
			quiz.PassThreshold = *q.PassThreshold
		}
		if q.XPReward != nil {
			quiz.XPReward = *q.XPReward
		}
		for _, question := range q.Questions {
			mq := model.Question{Text: question.Text, Order: question.Order}
			for _, c := range question.Choices {
				mq.Choices = append(mq.Choices, model.Choice{Text: c.Text, IsCorrect: c.IsCorrect})
			}
			quiz.Questions = append(quiz.Questions, mq)
		}
		out.Quizzes = append(out.Quizzes, quiz)
	}
	return out
}

// collectZeroFixes 需在 Create 之后调用，此时 ID 已回填
func collectZeroFixes(src SeedModule, dst *model.Module, fixes *[]zeroFix) {
	for i, l := range src.Lessons {
		if l.XPValue != nil && *l.XPValue == 0 {
			*fixes = append(*fixes, zeroFix{"lessons", &dst.Lessons[i].ID, "xp_value"})
		}
	}
	for i, q := range src.Quizzes {
		if q.PassThreshold != nil && *q.PassThreshold == 0 {
			*fixes = append(*fixes, zeroFix{"quizzes", &dst.Quizzes[i].ID, "pass_threshold"})
		}
		if q.XPReward != nil && *q.XPReward == 0 {
			*fixes = append(*fixes, zeroFix{"quizzes", &dst.Quizzes[i].ID, "xp_reward"})
		}
	}
}

type SeedService struct {
	DB      *gorm.DB
	Content *ContentService
}

func NewSeedService(db *gorm.DB, content *ContentService) *SeedService {
	return &SeedService{DB: db, Content: content}
}

// Seed 在一个事务内导入；同一主题下已存在的同名课程跳过
func (s *SeedService) Seed(ctx context.Context, catalog *SeedCatalog) (*SeedReport, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	report := &SeedReport{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		badges := repository.NewBadgeRepository(tx)
		for _, b := range catalog.Badges {
			if err := badges.UpsertBadge(&model.Badge{Name: b.Name, Description: b.Description, IconEmoji: b.IconEmoji}); err != nil {
				return fmt.Errorf("upsert badge %q: %w", b.Name, err)
			}
			report.Badges++
		}

		content := repository.NewContentRepository(tx)
		for _, t := range catalog.Topics {
			topic, err := content.FindTopicByTitle(t.Title)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				topic = &model.LearningTopic{Title: t.Title, Description: t.Description}
				if err := content.CreateTopic(topic); err != nil {
					return fmt.Errorf("create topic %q: %w", t.Title, err)
				}
				report.TopicsCreated++
			} else if err != nil {
				return fmt.Errorf("find topic %q: %w", t.Title, err)
			}

			for _, c := range t.Courses {
				var existing int64
				if err := tx.Model(&model.Course{}).Where("topic_id = ? AND title = ?", topic.ID, c.Title).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					logger.Log.Info("Course already seeded, skipping", zap.String("topic", t.Title), zap.String("course", c.Title))
					report.CoursesSkipped++
					continue
				}

				var fixes []zeroFix
				course := &model.Course{TopicID: topic.ID, Title: c.Title, Description: c.Description}
				for _, m := range c.Modules {
					course.Modules = append(course.Modules, m.toModel())
				}
				if err := content.CreateCourse(course); err != nil {
					return fmt.Errorf("create course %q: %w", c.Title, err)
				}
				for i, m := range c.Modules {
					collectZeroFixes(m, &course.Modules[i], &fixes)
				}
				for _, f := range fixes {
					if err := tx.Table(f.table).Where("id = ?", *f.id).UpdateColumn(f.column, 0).Error; err != nil {
						return fmt.Errorf("set %s.%s: %w", f.table, f.column, err)
					}
				}
				report.CoursesCreated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Content != nil {
		s.Content.InvalidateCatalog(ctx)
	}
	logger.Log.Info("Seed catalog loaded",
		zap.Int("badges", report.Badges),
		zap.Int("topics_created", report.TopicsCreated),
		zap.Int("courses_created", report.CoursesCreated),
		zap.Int("courses_skipped", report.CoursesSkipped),
	)
	return report, nil
}
