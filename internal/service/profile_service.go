package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/util"
	"unicode/utf8"

	"gorm.io/gorm"
)

const maxNameLength = 150

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// ProfileUpdate 只允许修改简介与姓名，等级与经验值只读
type ProfileUpdate struct {
	Bio  *string     `json:"bio"`
	User *NameUpdate `json:"user"`
}

type NameUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*model.Profile, error) {
	profile, err := repository.NewProfileRepository(s.DB.WithContext(ctx)).FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileUpdate) (*model.Profile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.User != nil {
			first, last := profile.User.FirstName, profile.User.LastName
			if in.User.FirstName != nil {
				first = strings.TrimSpace(*in.User.FirstName)
			}
			if in.User.LastName != nil {
				last = strings.TrimSpace(*in.User.LastName)
			}
			if utf8.RuneCountInString(first) > maxNameLength || utf8.RuneCountInString(last) > maxNameLength {
				return &util.DetailError{Err: util.ErrInvalidContent, Detail: fmt.Sprintf("names are limited to %d characters", maxNameLength)}
			}
			if err := repository.NewUserRepository(tx).UpdateNames(userID, first, last); err != nil {
				return err
			}
		}
		if in.Bio != nil {
			if err := repository.NewProfileRepository(tx).UpdateBio(profile.ID, *in.Bio); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
