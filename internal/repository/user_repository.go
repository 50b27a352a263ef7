package repository

import (
	"studypulse_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Profile").First(&user, id).Error
	return &user, err
}

// FindByEmail 同邮箱多条时取 id 最小的一条
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Profile").Where("email = ?", email).Order("id").First(&user).Error
	return &user, err
}

// CreateWithProfile 用户与档案在同一事务内创建
func (r *UserRepository) CreateWithProfile(user *model.User) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		profile := user.Profile
		user.Profile = nil
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &model.Profile{}
		}
		profile.UserID = user.ID
		if profile.Level < 1 {
			profile.Level = 1
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
}

func (r *UserRepository) UpdateNames(userID uint, firstName, lastName string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"first_name": firstName, "last_name": lastName}).
		Error
}

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByID(id uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.First(&profile, id).Error
	return &profile, err
}

func (r *ProfileRepository) FindByUserID(userID uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

// AddXP 在数据库侧自增，避免并发丢失更新
func (r *ProfileRepository) AddXP(profileID uint, xp int) error {
	return r.DB.Model(&model.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("xp", gorm.Expr("xp + ?", xp)).
		Error
}

// SetLevel 读取当前 xp 并重算等级，返回最新 xp
func (r *ProfileRepository) SetLevel(profileID uint, levelFor func(xp int) int) (int, error) {
	var profile model.Profile
	if err := r.DB.Select("id", "xp", "level").First(&profile, profileID).Error; err != nil {
		return 0, err
	}
	level := levelFor(profile.XP)
	if level != profile.Level {
		if err := r.DB.Model(&model.Profile{}).Where("id = ?", profileID).UpdateColumn("level", level).Error; err != nil {
			return 0, err
		}
	}
	return profile.XP, nil
}

func (r *ProfileRepository) UpdateBio(profileID uint, bio string) error {
	return r.DB.Model(&model.Profile{}).Where("id = ?", profileID).Update("bio", bio).Error
}

func (r *ProfileRepository) FindTopByXP(limit int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.DB.Preload("User").Order("xp DESC").Order("id").Limit(limit).Find(&profiles).Error
	return profiles, err
}
