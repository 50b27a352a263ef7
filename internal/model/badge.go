package model

import "time"

// swagger:model Badge
type Badge struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconEmoji   string `gorm:"size:16" json:"icon_emoji"`
}

func (Badge) TableName() string {
	return "badges"
}

// swagger:model UserBadge
type UserBadge struct {
	BaseModel
	ProfileID uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"-"`
	Profile   *Profile  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	BadgeID   uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"-"`
	Badge     *Badge    `gorm:"foreignKey:BadgeID;constraint:OnDelete:CASCADE" json:"badge"`
	EarnedAt  time.Time `gorm:"not null" json:"earned_at"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
