package model

import "time"

// StatType names one of the eight character stats.
type StatType = string

const (
	StatStamina     StatType = "stamina"
	StatStrength    StatType = "strength"
	StatMental      StatType = "mental"
	StatEndurance   StatType = "endurance"
	StatCardio      StatType = "cardio"
	StatFlexibility StatType = "flexibility"
	StatNutrition   StatType = "nutrition"
	StatRecovery    StatType = "recovery"
)

// StatTypes is the fixed stat order used for level-up point distribution.
var StatTypes = []StatType{
	StatStamina, StatStrength, StatMental, StatEndurance,
	StatCardio, StatFlexibility, StatNutrition, StatRecovery,
}

// Character is a user's RPG avatar; one per user, created lazily.
type Character struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Name             string    `gorm:"size:50;not null" json:"name"`
	Level            int       `gorm:"default:1" json:"level"`
	ExperiencePoints int       `gorm:"default:0" json:"experience_points"`
	Stamina          int       `gorm:"default:10" json:"stamina"`
	Strength         int       `gorm:"default:10" json:"strength"`
	Mental           int       `gorm:"default:10" json:"mental"`
	Endurance        int       `gorm:"default:10" json:"endurance"`
	Cardio           int       `gorm:"default:10" json:"cardio"`
	Flexibility      int       `gorm:"default:10" json:"flexibility"`
	Nutrition        int       `gorm:"default:10" json:"nutrition"`
	Recovery         int       `gorm:"default:10" json:"recovery"`
	Gold             int64     `gorm:"default:100" json:"gold"`
	Gems             int64     `gorm:"default:0" json:"gems"`
	Skin             string    `gorm:"size:50;default:default" json:"skin"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Stat returns the value of the named stat. The bool is false for
// names outside the closed stat set.
func (c *Character) Stat(name StatType) (int, bool) {
	p := c.statPtr(name)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// AddStat applies a delta to the named stat and returns old and new values.
// The bool is false for unknown stat names; nothing is changed in that case.
func (c *Character) AddStat(name StatType, delta int) (old, updated int, ok bool) {
	p := c.statPtr(name)
	if p == nil {
		return 0, 0, false
	}
	old = *p
	*p += delta
	return old, *p, true
}

// statPtr dispatches a stat name to its field. Explicit switch over the
// closed enum; no reflection.
func (c *Character) statPtr(name StatType) *int {
	switch name {
	case StatStamina:
		return &c.Stamina
	case StatStrength:
		return &c.Strength
	case StatMental:
		return &c.Mental
	case StatEndurance:
		return &c.Endurance
	case StatCardio:
		return &c.Cardio
	case StatFlexibility:
		return &c.Flexibility
	case StatNutrition:
		return &c.Nutrition
	case StatRecovery:
		return &c.Recovery
	}
	return nil
}

// TotalStats sums all eight stats.
func (c *Character) TotalStats() int {
	return c.Stamina + c.Strength + c.Mental + c.Endurance +
		c.Cardio + c.Flexibility + c.Nutrition + c.Recovery
}

// HealthScore is a composite wellness score in [0,100].
func (c *Character) HealthScore() int {
	score := c.TotalStats() / 2
	if score > 100 {
		score = 100
	}
	return score
}

// StatHistory is an append-only record of one stat change.
type StatHistory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID  int64     `gorm:"index:idx_char_stat;not null" json:"character_id"`
	StatType     string    `gorm:"size:20;not null" json:"stat_type"`
	OldValue     int       `gorm:"not null" json:"old_value"`
	NewValue     int       `gorm:"not null" json:"new_value"`
	ChangeReason string    `gorm:"size:100" json:"change_reason"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
