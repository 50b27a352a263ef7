package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel
	ModuleID      uint       `gorm:"index;not null" json:"module"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	PassThreshold int        `gorm:"not null;default:70" json:"pass_threshold"` // 百分比 0-100
	XPReward      int        `gorm:"column:xp_reward;not null;default:50" json:"xp_reward"`
	Questions     []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	BaseModel
	QuizID  uint     `gorm:"index;not null" json:"-"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Order   int      `gorm:"column:sort_order;default:0" json:"order"`
	Choices []Choice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"-"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
}

func (Choice) TableName() string {
	return "choices"
}

// QuizAttempt 创建即为进行中，评分完成后 IsComplete 置为 true，不再修改
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	ProfileID     uint       `gorm:"index;not null" json:"user_profile"`
	Profile       *Profile   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	QuizID        uint       `gorm:"index;not null" json:"quiz"`
	Quiz          *Quiz      `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	StartTime     time.Time  `gorm:"not null" json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Score         *float64   `json:"score"`
	Passed        bool       `gorm:"default:false" json:"passed"`
	IsComplete    bool       `gorm:"default:false" json:"is_complete"`
	QuestionCount int        `gorm:"default:0" json:"question_count"`
	Answers       []Answer   `gorm:"foreignKey:QuizAttemptID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Answer 的 IsCorrect 是评分时的快照，之后修改选项不影响历史成绩
// swagger:model Answer
type Answer struct {
	BaseModel
	QuizAttemptID    uint      `gorm:"index;not null" json:"-"`
	QuestionID       uint      `gorm:"index;not null" json:"question"`
	Question         *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	SelectedChoiceID *uint     `gorm:"index" json:"selected_choice"`
	SelectedChoice   *Choice   `gorm:"foreignKey:SelectedChoiceID;constraint:OnDelete:CASCADE" json:"-"`
	IsCorrect        bool      `gorm:"default:false" json:"is_correct"`
}

func (Answer) TableName() string {
	return "answers"
}
