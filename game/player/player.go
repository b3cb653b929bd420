package player

import (
	"context"
	"errors"

	"github.com/habitquest/server/model"
	"gorm.io/gorm"
)

// GetOrCreateCharacter loads the character owned by the user, creating
// it with defaults on first access. Every user has exactly one
// character, materialized lazily.
func GetOrCreateCharacter(ctx context.Context, db *gorm.DB, userID int64) (*model.Character, error) {
	var char model.Character
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&char).Error
	if err == nil {
		return &char, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user model.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	char = model.Character{
		UserID: userID,
		Name:   user.Nickname,
		Level:  1,
		Stamina: 10, Strength: 10, Mental: 10, Endurance: 10,
		Cardio: 10, Flexibility: 10, Nutrition: 10, Recovery: 10,
		Gold: 100,
		Skin: "default",
	}
	if err := db.WithContext(ctx).Create(&char).Error; err != nil {
		// Concurrent first access: another request created it.
		if ferr := db.WithContext(ctx).Where("user_id = ?", userID).First(&char).Error; ferr == nil {
			return &char, nil
		}
		return nil, err
	}
	return &char, nil
}

// GetOrCreateStreak loads the user's daily streak record, creating an
// empty one on first access.
func GetOrCreateStreak(ctx context.Context, db *gorm.DB, userID int64) (*model.DailyStreak, error) {
	var ds model.DailyStreak
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&ds).Error
	if err == nil {
		return &ds, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ds = model.DailyStreak{UserID: userID}
	if err := db.WithContext(ctx).Create(&ds).Error; err != nil {
		if ferr := db.WithContext(ctx).Where("user_id = ?", userID).First(&ds).Error; ferr == nil {
			return &ds, nil
		}
		return nil, err
	}
	return &ds, nil
}
