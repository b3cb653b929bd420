package nutrition

import (
	"context"
	"errors"
	"time"

	"github.com/habitquest/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Supplement errors.
var (
	ErrSupplementNotFound = errors.New("nutrition: supplement not found")
	ErrInvalidTimeOfDay   = errors.New("nutrition: invalid time of day")
	ErrRegimenNotFound    = errors.New("nutrition: user supplement not found")
)

var validTimesOfDay = map[string]bool{
	"morning": true, "afternoon": true, "evening": true, "night": true,
}

// ListSupplements returns active catalog entries, optionally filtered by
// category or a name substring.
func (svc *Service) ListSupplements(ctx context.Context, category, search string) ([]model.Supplement, error) {
	q := svc.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var supplements []model.Supplement
	if err := q.Order("category, name").Find(&supplements).Error; err != nil {
		return nil, err
	}
	return supplements, nil
}

// RegimenInput is the payload for subscribing to a catalog supplement.
type RegimenInput struct {
	SupplementID  int64
	Dosage        string
	Frequency     string
	Morning       bool
	Afternoon     bool
	Evening       bool
	PersonalNotes string
}

// AddRegimen subscribes the user to a catalog supplement with their own
// dosage and schedule.
func (svc *Service) AddRegimen(ctx context.Context, userID int64, in RegimenInput) (*model.UserSupplement, error) {
	var supplement model.Supplement
	err := svc.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", in.SupplementID, true).
		First(&supplement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplementNotFound
	}
	if err != nil {
		return nil, err
	}

	us := &model.UserSupplement{
		UserID:        userID,
		SupplementID:  in.SupplementID,
		Dosage:        in.Dosage,
		Frequency:     in.Frequency,
		Morning:       in.Morning,
		Afternoon:     in.Afternoon,
		Evening:       in.Evening,
		PersonalNotes: in.PersonalNotes,
		IsActive:      true,
	}
	if err := svc.db.WithContext(ctx).Create(us).Error; err != nil {
		return nil, err
	}
	svc.logger.Debug("supplement regimen added",
		zap.Int64("user_id", userID),
		zap.String("supplement", supplement.Name))
	return us, nil
}

// RegimenEntry pairs a user regimen with its catalog supplement.
type RegimenEntry struct {
	model.UserSupplement
	Supplement model.Supplement `json:"supplement"`
}

// ListRegimens returns the user's supplement regimens with catalog details,
// active ones only unless activeOnly is false.
func (svc *Service) ListRegimens(ctx context.Context, userID int64, activeOnly bool) ([]RegimenEntry, error) {
	q := svc.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var regimens []model.UserSupplement
	if err := q.Order("created_at").Find(&regimens).Error; err != nil {
		return nil, err
	}

	entries := make([]RegimenEntry, 0, len(regimens))
	for _, r := range regimens {
		var supplement model.Supplement
		if err := svc.db.WithContext(ctx).First(&supplement, r.SupplementID).Error; err != nil {
			return nil, err
		}
		entries = append(entries, RegimenEntry{UserSupplement: r, Supplement: supplement})
	}
	return entries, nil
}

// StopRegimen deactivates a regimen and stamps its end date. Intake logs
// against it are preserved.
func (svc *Service) StopRegimen(ctx context.Context, userID, regimenID int64, now time.Time) error {
	res := svc.db.WithContext(ctx).Model(&model.UserSupplement{}).
		Where("id = ? AND user_id = ? AND is_active = ?", regimenID, userID, true).
		Updates(map[string]interface{}{"is_active": false, "ended_date": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRegimenNotFound
	}
	return nil
}

// IntakeInput is the payload for recording one supplement intake.
type IntakeInput struct {
	UserSupplementID int64
	TakenAt          time.Time
	DosageTaken      string
	TimeOfDay        string
	Notes            string
	SideEffects      string
}

// LogIntake records one intake against a regimen the user owns.
func (svc *Service) LogIntake(ctx context.Context, userID int64, in IntakeInput) (*model.SupplementLog, error) {
	if !validTimesOfDay[in.TimeOfDay] {
		return nil, ErrInvalidTimeOfDay
	}
	var regimen model.UserSupplement
	err := svc.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", in.UserSupplementID, userID).
		First(&regimen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegimenNotFound
	}
	if err != nil {
		return nil, err
	}

	log := &model.SupplementLog{
		UserID:           userID,
		UserSupplementID: in.UserSupplementID,
		TakenAt:          in.TakenAt,
		DosageTaken:      in.DosageTaken,
		TimeOfDay:        in.TimeOfDay,
		Notes:            in.Notes,
		SideEffects:      in.SideEffects,
	}
	if err := svc.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// ListIntakes returns the user's intake logs, newest first, optionally
// limited to one regimen or one civil day.
func (svc *Service) ListIntakes(ctx context.Context, userID int64, regimenID *int64, day *time.Time) ([]model.SupplementLog, error) {
	q := svc.db.WithContext(ctx).Where("user_id = ?", userID)
	if regimenID != nil {
		q = q.Where("user_supplement_id = ?", *regimenID)
	}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		q = q.Where("taken_at >= ? AND taken_at < ?", start, start.Add(24*time.Hour))
	}
	var logs []model.SupplementLog
	if err := q.Order("taken_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
