package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestStatus represents the lifecycle state of an assigned quest.
type QuestStatus = string

const (
	QuestStatusAssigned   QuestStatus = "assigned"
	QuestStatusInProgress QuestStatus = "in_progress"
	QuestStatusCompleted  QuestStatus = "completed"
	QuestStatusFailed     QuestStatus = "failed"
	QuestStatusExpired    QuestStatus = "expired"
)

// QuestTemplate is a catalog entry quests are instantiated from.
type QuestTemplate struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Category        string         `gorm:"size:20;default:morning" json:"category"` // morning|work|evening|night|weekly|challenge
	Difficulty      string         `gorm:"size:10;default:normal" json:"difficulty"`
	TargetStats     datatypes.JSON `json:"target_stats"` // {"stamina": 2, "strength": 1}
	BaseExperience  int            `gorm:"default:10" json:"base_experience"`
	BaseGold        int64          `gorm:"default:5" json:"base_gold"`
	BaseGems        int64          `gorm:"default:0" json:"base_gems"`
	DurationMinutes int            `gorm:"default:30" json:"duration_minutes"`
	RequiredLevel   int            `gorm:"default:1" json:"required_level"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Quest is a single habit task assigned to a user. Reward fields are
// snapshotted from the template at assignment time so later template
// edits never change an in-flight quest.
type Quest struct {
	ID               int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64          `gorm:"index:idx_user_quest;not null" json:"user_id"`
	TemplateID       int64          `gorm:"not null" json:"template_id"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	TargetStats      datatypes.JSON `json:"target_stats"`
	ExperienceReward int            `gorm:"not null" json:"experience_reward"`
	GoldReward       int64          `gorm:"not null" json:"gold_reward"`
	GemsReward       int64          `gorm:"default:0" json:"gems_reward"`
	Status           string         `gorm:"size:20;default:assigned" json:"status"`
	AssignedDate     time.Time      `gorm:"autoCreateTime" json:"assigned_date"`
	StartDate        *time.Time     `json:"start_date"`
	DueDate          time.Time      `gorm:"not null" json:"due_date"`
	CompletedDate    *time.Time     `json:"completed_date"`
	Progress         float64        `gorm:"default:0" json:"progress"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the quest can no longer change state.
func (q *Quest) IsTerminal() bool {
	switch q.Status {
	case QuestStatusCompleted, QuestStatusFailed, QuestStatusExpired:
		return true
	}
	return false
}

// IsOverdue reports whether a still-actionable quest has passed its due date.
// Expiration is derived at query time; the scheduler sweep persists it.
func (q *Quest) IsOverdue(now time.Time) bool {
	return now.After(q.DueDate) && !q.IsTerminal()
}

// QuestCompletion is the immutable record created once per completed quest.
type QuestCompletion struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestID            int64          `gorm:"uniqueIndex;not null" json:"quest_id"`
	CompletionTime     time.Time      `gorm:"autoCreateTime" json:"completion_time"`
	ActualDuration     *time.Duration `json:"actual_duration"`
	DifficultyRating   *int           `json:"difficulty_rating"`   // 1-5
	SatisfactionRating *int           `json:"satisfaction_rating"` // 1-5
	UserNotes          string         `gorm:"type:text" json:"user_notes"`
}

// DailyStreak tracks consecutive completion days for a user; one per user.
type DailyStreak struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak      int        `gorm:"default:0" json:"current_streak"`
	LongestStreak      int        `gorm:"default:0" json:"longest_streak"`
	LastCompletionDate *time.Time `json:"last_completion_date"`
	StreakStartDate    *time.Time `json:"streak_start_date"`
}
