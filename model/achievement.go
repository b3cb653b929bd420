package model

import "time"

// AchievementRequirement is the counter an achievement unlocks against.
type AchievementRequirement = string

const (
	RequirementQuestCount AchievementRequirement = "quest_count"
	RequirementStreak     AchievementRequirement = "streak"
	RequirementLevel      AchievementRequirement = "level"
)

// Achievement is a catalog entry granted when a user counter crosses a threshold.
type Achievement struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Icon             string    `gorm:"size:50;default:trophy" json:"icon"`
	RequirementType  string    `gorm:"size:20;not null" json:"requirement_type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	RewardGold       int64     `gorm:"default:0" json:"reward_gold"`
	RewardGems       int64     `gorm:"default:0" json:"reward_gems"`
	RewardExperience int       `gorm:"default:0" json:"reward_experience"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records one achievement earned by a user; granted at most once.
type UserAchievement struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID int64     `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	AchievedAt    time.Time `gorm:"autoCreateTime" json:"achieved_at"`
}
