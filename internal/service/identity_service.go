package service

import (
	"context"
	"errors"
	"fmt"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/pkg/firebase"
	"studypulse_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IdentityService struct {
	DB *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{DB: db}
}

// Resolve 按邮箱查找本地用户，不存在时在同一事务中创建用户与档案
func (s *IdentityService) Resolve(ctx context.Context, identity *firebase.Identity) (*model.User, error) {
	repo := repository.NewUserRepository(s.DB.WithContext(ctx))

	user, err := repo.FindByEmail(identity.Email)
	if err == nil {
		return s.reconcile(ctx, user, identity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	uid := identity.UID
	user = &model.User{
		ExternalID: &uid,
		Email:      identity.Email,
		Username:   identity.Email,
		Profile:    &model.Profile{Level: 1},
	}
	if err := repo.CreateWithProfile(user); err != nil {
		// 并发首次登录，另一请求已用同一邮箱创建
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := repo.FindByEmail(identity.Email)
			if findErr != nil {
				return nil, fmt.Errorf("find user after duplicate insert: %w", findErr)
			}
			return s.reconcile(ctx, existing, identity)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Log.Info("Created user from identity token",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

// reconcile 补齐旧数据缺失的档案与外部 uid
func (s *IdentityService) reconcile(ctx context.Context, user *model.User, identity *firebase.Identity) (*model.User, error) {
	db := s.DB.WithContext(ctx)

	if user.ExternalID == nil {
		uid := identity.UID
		if err := db.Model(user).UpdateColumn("external_id", uid).Error; err != nil {
			logger.Log.Warn("Failed to record external id", zap.Uint("user_id", user.ID), zap.Error(err))
		} else {
			user.ExternalID = &uid
		}
	} else if *user.ExternalID != identity.UID {
		logger.Log.Warn("Email already linked to another identity",
			zap.Uint("user_id", user.ID),
			zap.String("email", user.Email),
		)
	}

	if user.Profile == nil {
		profile := &model.Profile{UserID: user.ID, Level: 1}
		if err := db.Create(profile).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create missing profile: %w", err)
		}
		p, err := repository.NewProfileRepository(db).FindByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		user.Profile = p
	}
	return user, nil
}
