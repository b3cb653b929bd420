package model

import "time"

// ActivityLevel describes how physically active a user reports being.
type ActivityLevel = string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// User represents a registered user account.
type User struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Nickname      string     `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	PasswordHash  string     `gorm:"size:64;not null" json:"-"`
	HeightCm      *float64   `json:"height_cm"`
	WeightKg      *float64   `json:"weight_kg"`
	ActivityLevel string     `gorm:"size:20;default:moderate" json:"activity_level"`
	Timezone      string     `gorm:"size:50;default:UTC" json:"timezone"`
	Status        int        `gorm:"default:1" json:"status"` // 0=banned 1=normal
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	LastLoginIP   string     `gorm:"size:45" json:"last_login_ip"`
}
