package model

import "time"

// UserProgress 每个 (profile, lesson) 最多一条，唯一索引保证并发下不重复发放经验
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	ProfileID   uint      `gorm:"uniqueIndex:idx_progress_profile_lesson;not null" json:"user_profile"`
	Profile     *Profile  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	LessonID    uint      `gorm:"uniqueIndex:idx_progress_profile_lesson;index;not null" json:"lesson_id"`
	Lesson      *Lesson   `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
