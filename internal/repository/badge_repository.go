package repository

import (
	"studypulse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindByProfile(profileID uint) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	err := r.DB.Preload("Badge").
		Where("profile_id = ?", profileID).
		Order("earned_at DESC").
		Find(&badges).Error
	return badges, err
}

// UpsertBadge 以 name 为键
func (r *BadgeRepository) UpsertBadge(badge *model.Badge) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "icon_emoji", "updated_at"}),
	}).Create(badge).Error
}
