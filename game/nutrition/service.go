package nutrition

import (
	"context"
	"errors"
	"time"

	"github.com/habitquest/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidMeal is returned for meal types or qualities outside the known sets.
var ErrInvalidMeal = errors.New("nutrition: invalid meal type or quality")

var validMealTypes = map[string]bool{
	"breakfast": true, "lunch": true, "dinner": true, "snack": true,
}

var validQualities = map[string]bool{
	model.MealExcellent: true, model.MealGood: true,
	model.MealFair: true, model.MealPoor: true,
}

// Service handles nutrition log operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a nutrition Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// LogInput is the payload for recording a meal.
type LogInput struct {
	Date               time.Time
	MealType           string
	MealQuality        string
	IncludedVegetables bool
	IncludedProtein    bool
	IncludedGrains     bool
	ProperPortion      bool
	Notes              string
	CaloriesEstimate   *int
}

// CreateLog validates and stores one meal entry.
func (svc *Service) CreateLog(ctx context.Context, userID int64, in LogInput) (*model.NutritionLog, error) {
	if !validMealTypes[in.MealType] || !validQualities[in.MealQuality] {
		return nil, ErrInvalidMeal
	}
	log := &model.NutritionLog{
		UserID:             userID,
		Date:               in.Date,
		MealType:           in.MealType,
		MealQuality:        in.MealQuality,
		IncludedVegetables: in.IncludedVegetables,
		IncludedProtein:    in.IncludedProtein,
		IncludedGrains:     in.IncludedGrains,
		ProperPortion:      in.ProperPortion,
		Notes:              in.Notes,
		CaloriesEstimate:   in.CaloriesEstimate,
	}
	if err := svc.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	svc.logger.Debug("nutrition log created",
		zap.Int64("user_id", userID),
		zap.String("meal_type", in.MealType),
		zap.Int("score", LogScore(log)))
	return log, nil
}

// ListLogs returns a user's logs, newest first, optionally since a date.
func (svc *Service) ListLogs(ctx context.Context, userID int64, since *time.Time) ([]model.NutritionLog, error) {
	q := svc.db.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("date >= ?", *since)
	}
	var logs []model.NutritionLog
	if err := q.Order("date DESC, created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Stats summarizes a user's nutrition logs.
type Stats struct {
	AverageScore            float64 `json:"average_score"`
	TotalLogs               int     `json:"total_logs"`
	ExcellentMeals          int     `json:"excellent_meals"`
	GoodMeals               int     `json:"good_meals"`
	FairMeals               int     `json:"fair_meals"`
	PoorMeals               int     `json:"poor_meals"`
	VegetablesPercentage    float64 `json:"vegetables_percentage"`
	ProteinPercentage       float64 `json:"protein_percentage"`
	GrainsPercentage        float64 `json:"grains_percentage"`
	ProperPortionPercentage float64 `json:"proper_portion_percentage"`
}

// ComputeStats aggregates scores and checklist rates over a user's logs
// since the given date (all logs when since is nil).
func (svc *Service) ComputeStats(ctx context.Context, userID int64, since *time.Time) (*Stats, error) {
	logs, err := svc.ListLogs(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalLogs: len(logs)}
	if len(logs) == 0 {
		return stats, nil
	}

	var scoreSum, veg, protein, grains, portion int
	for i := range logs {
		log := &logs[i]
		scoreSum += LogScore(log)
		switch log.MealQuality {
		case model.MealExcellent:
			stats.ExcellentMeals++
		case model.MealGood:
			stats.GoodMeals++
		case model.MealFair:
			stats.FairMeals++
		case model.MealPoor:
			stats.PoorMeals++
		}
		if log.IncludedVegetables {
			veg++
		}
		if log.IncludedProtein {
			protein++
		}
		if log.IncludedGrains {
			grains++
		}
		if log.ProperPortion {
			portion++
		}
	}

	n := float64(len(logs))
	stats.AverageScore = float64(scoreSum) / n
	stats.VegetablesPercentage = float64(veg) / n * 100
	stats.ProteinPercentage = float64(protein) / n * 100
	stats.GrainsPercentage = float64(grains) / n * 100
	stats.ProperPortionPercentage = float64(portion) / n * 100
	return stats, nil
}
