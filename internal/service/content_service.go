package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogKey          = "catalog:courses"
	courseKeyPrefix     = "catalog:course:"
	defaultCatalogCache = 5 * time.Minute
)

// ContentService 目录读多写少，Redis 可用时缓存序列化结果
type ContentService struct {
	ContentRepo *repository.ContentRepository
	Redis       *redis.Client
	TTL         time.Duration
}

func NewContentService(contentRepo *repository.ContentRepository, rdb *redis.Client, ttl time.Duration) *ContentService {
	if ttl <= 0 {
		ttl = defaultCatalogCache
	}
	return &ContentService{ContentRepo: contentRepo, Redis: rdb, TTL: ttl}
}

func (s *ContentService) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if s.cached(ctx, catalogKey, &courses) {
		return courses, nil
	}

	courses, err := repository.NewContentRepository(s.ContentRepo.DB.WithContext(ctx)).ListCourses()
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	s.store(ctx, catalogKey, courses)
	return courses, nil
}

func (s *ContentService) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	key := fmt.Sprintf("%s%d", courseKeyPrefix, id)
	var course model.Course
	if s.cached(ctx, key, &course) {
		return &course, nil
	}

	found, err := repository.NewContentRepository(s.ContentRepo.DB.WithContext(ctx)).FindCourseByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	s.store(ctx, key, found)
	return found, nil
}

// InvalidateCatalog 内容变更后调用
func (s *ContentService) InvalidateCatalog(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	keys := []string{catalogKey}
	iter := s.Redis.Scan(ctx, 0, courseKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *ContentService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.Redis == nil {
		return false
	}
	val, err := s.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logger.Log.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		logger.Log.Warn("Catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ContentService) store(ctx context.Context, key string, v interface{}) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, s.TTL).Err(); err != nil {
		logger.Log.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
