package model

type ContentType string

const (
	ContentText         ContentType = "text"
	ContentYouTube      ContentType = "youtube"
	ContentExternalLink ContentType = "external_link"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentYouTube, ContentExternalLink:
		return true
	}
	return false
}

// swagger:model LearningTopic
type LearningTopic struct {
	BaseModel
	Title       string `gorm:"size:191;uniqueIndex;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (LearningTopic) TableName() string {
	return "learning_topics"
}

// swagger:model Course
type Course struct {
	BaseModel
	// 主题被课程引用时不允许删除
	TopicID     uint           `gorm:"index;not null" json:"-"`
	Topic       *LearningTopic `gorm:"foreignKey:TopicID;constraint:OnDelete:RESTRICT" json:"topic,omitempty"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Modules     []Module       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Module
type Module struct {
	BaseModel
	CourseID    uint     `gorm:"index;not null" json:"-"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Order       int      `gorm:"column:sort_order;default:0" json:"order"`
	Lessons     []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons"`
	Quizzes     []Quiz   `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	ModuleID       uint        `gorm:"index;not null" json:"-"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	ContentType    ContentType `gorm:"size:20;not null;default:'text'" json:"content_type"`
	TextContent    *string     `gorm:"type:text" json:"text_content"`
	YouTubeVideoID *string     `gorm:"column:youtube_video_id;size:50" json:"youtube_video_id"`
	ExternalURL    *string     `gorm:"size:500" json:"external_url"`
	Order          int         `gorm:"column:sort_order;default:0" json:"order"`
	XPValue        int         `gorm:"column:xp_value;not null;default:10" json:"xp_value"`
}

func (Lesson) TableName() string {
	return "lessons"
}
