package model

import "time"

// MealQuality is the user's self-assessment of a meal.
type MealQuality = string

const (
	MealExcellent MealQuality = "excellent"
	MealGood      MealQuality = "good"
	MealFair      MealQuality = "fair"
	MealPoor      MealQuality = "poor"
)

// NutritionLog records one meal with a quality rating and checklist flags.
type NutritionLog struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64     `gorm:"index:idx_user_nutrition;not null" json:"user_id"`
	Date               time.Time `gorm:"not null" json:"date"`
	MealType           string    `gorm:"size:20;not null" json:"meal_type"` // breakfast|lunch|dinner|snack
	MealQuality        string    `gorm:"size:20;not null" json:"meal_quality"`
	IncludedVegetables bool      `gorm:"default:false" json:"included_vegetables"`
	IncludedProtein    bool      `gorm:"default:false" json:"included_protein"`
	IncludedGrains     bool      `gorm:"default:false" json:"included_grains"`
	ProperPortion      bool      `gorm:"default:false" json:"proper_portion"`
	Notes              string    `gorm:"type:text" json:"notes"`
	CaloriesEstimate   *int      `json:"calories_estimate"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
