package model

// swagger:model User
type User struct {
	BaseModel
	// ExternalID is the identity-service uid recorded when the user is first seen.
	// Users are keyed by email, so one uid may end up on several rows after an email change.
	ExternalID *string  `gorm:"size:128;index" json:"-"`
	Email      string   `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Username   string   `gorm:"size:191;uniqueIndex;not null" json:"username"`
	FirstName  string   `gorm:"size:150" json:"first_name"`
	LastName   string   `gorm:"size:150" json:"last_name"`
	IsStaff    bool     `gorm:"default:false" json:"-"`
	Profile    *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// swagger:model Profile
type Profile struct {
	BaseModel
	UserID uint   `gorm:"uniqueIndex;not null" json:"-"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Level  int    `gorm:"not null;default:1" json:"level"`
	XP     int    `gorm:"not null;default:0" json:"xp"` // 经验值，只通过课时完成与测验通过增加
	Bio    string `gorm:"type:text" json:"bio"`
}

func (Profile) TableName() string {
	return "profiles"
}
