package achievement

import (
	"github.com/habitquest/server/game/progression"
	"github.com/habitquest/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Progress holds the counters achievements unlock against.
type Progress struct {
	QuestsCompleted int64
	CurrentStreak   int
	CharacterLevel  int
}

// Service grants achievements when user counters cross catalog thresholds.
type Service struct {
	curve  progression.Curve
	logger *zap.Logger
}

// NewService creates an achievement Service.
func NewService(curve progression.Curve, logger *zap.Logger) *Service {
	return &Service{curve: curve, logger: logger}
}

// CheckAndGrant grants every active, not-yet-earned achievement whose
// requirement is satisfied by the given progress, applying its rewards
// to the character. It runs on the caller's transaction so grants land
// atomically with the settlement that triggered them.
func (svc *Service) CheckAndGrant(tx *gorm.DB, userID int64, char *model.Character, p Progress) ([]model.Achievement, error) {
	var candidates []model.Achievement
	if err := tx.Where("is_active = ?", true).Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var earnedIDs []int64
	if err := tx.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &earnedIDs).Error; err != nil {
		return nil, err
	}
	earned := make(map[int64]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	var granted []model.Achievement
	for _, a := range candidates {
		if earned[a.ID] || !satisfied(a, p) {
			continue
		}
		if err := tx.Create(&model.UserAchievement{UserID: userID, AchievementID: a.ID}).Error; err != nil {
			return granted, err
		}
		if a.RewardExperience > 0 {
			if _, err := progression.ApplyToCharacter(char, a.RewardExperience, svc.curve); err != nil {
				return granted, err
			}
		}
		char.Gold += a.RewardGold
		char.Gems += a.RewardGems
		granted = append(granted, a)
		svc.logger.Info("achievement granted",
			zap.Int64("user_id", userID),
			zap.String("achievement", a.Name))
	}
	return granted, nil
}

func satisfied(a model.Achievement, p Progress) bool {
	switch a.RequirementType {
	case model.RequirementQuestCount:
		return p.QuestsCompleted >= int64(a.RequirementValue)
	case model.RequirementStreak:
		return p.CurrentStreak >= a.RequirementValue
	case model.RequirementLevel:
		return p.CharacterLevel >= a.RequirementValue
	}
	return false
}
