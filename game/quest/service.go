package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/habitquest/server/game/achievement"
	"github.com/habitquest/server/game/player"
	"github.com/habitquest/server/game/progression"
	"github.com/habitquest/server/game/streak"
	"github.com/habitquest/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the quest or template does not exist
	// (or belongs to another user).
	ErrNotFound = errors.New("quest: not found")
	// ErrInvalidTransition is returned when an operation is attempted
	// from the wrong lifecycle state.
	ErrInvalidTransition = errors.New("quest: invalid transition")
	// ErrTemplateInactive is returned when assigning from a disabled template.
	ErrTemplateInactive = errors.New("quest: template inactive")
	// ErrLevelTooLow is returned when the character does not meet the
	// template's required level.
	ErrLevelTooLow = errors.New("quest: character level too low")
	// ErrUnknownStat is returned for target-stat keys outside the closed stat set.
	ErrUnknownStat = errors.New("quest: unknown stat")
)

// Service handles quest assignment and settlement.
type Service struct {
	db           *gorm.DB
	charCurve    progression.Curve
	guildCurve   progression.Curve
	achievements *achievement.Service
	logger       *zap.Logger
}

// NewService creates a quest Service.
func NewService(db *gorm.DB, charCurve, guildCurve progression.Curve, achievements *achievement.Service, logger *zap.Logger) *Service {
	return &Service{
		db:           db,
		charCurve:    charCurve,
		guildCurve:   guildCurve,
		achievements: achievements,
		logger:       logger,
	}
}

// Assign instantiates a quest from a template for the user. Reward
// fields are copied onto the quest so later template edits never change
// an assigned quest.
func (svc *Service) Assign(ctx context.Context, userID, templateID int64, dueDate time.Time) (*model.Quest, error) {
	var tmpl model.QuestTemplate
	if err := svc.db.WithContext(ctx).First(&tmpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateInactive
	}

	if _, err := decodeTargetStats(tmpl.TargetStats); err != nil {
		return nil, err
	}

	char, err := player.GetOrCreateCharacter(ctx, svc.db, userID)
	if err != nil {
		return nil, err
	}
	if char.Level < tmpl.RequiredLevel {
		return nil, fmt.Errorf("%w: need level %d", ErrLevelTooLow, tmpl.RequiredLevel)
	}

	q := &model.Quest{
		UserID:           userID,
		TemplateID:       tmpl.ID,
		Title:            tmpl.Title,
		Description:      tmpl.Description,
		TargetStats:      tmpl.TargetStats,
		ExperienceReward: tmpl.BaseExperience,
		GoldReward:       tmpl.BaseGold,
		GemsReward:       tmpl.BaseGems,
		Status:           model.QuestStatusAssigned,
		DueDate:          dueDate,
	}
	if err := svc.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// AssignDaily instantiates today's quests from every active daily
// template the character qualifies for. Templates already assigned
// today are skipped, so repeated calls on the same day are no-ops.
// Assigned quests are due at the end of the user's current UTC day.
func (svc *Service) AssignDaily(ctx context.Context, userID int64, now time.Time) ([]model.Quest, error) {
	char, err := player.GetOrCreateCharacter(ctx, svc.db, userID)
	if err != nil {
		return nil, err
	}

	var templates []model.QuestTemplate
	err = svc.db.WithContext(ctx).
		Where("is_active = ? AND required_level <= ? AND category IN ?",
			true, char.Level, []string{"morning", "work", "evening", "night"}).
		Find(&templates).Error
	if err != nil {
		return nil, err
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var todayTemplateIDs []int64
	err = svc.db.WithContext(ctx).Model(&model.Quest{}).
		Where("user_id = ? AND assigned_date >= ?", userID, dayStart).
		Pluck("template_id", &todayTemplateIDs).Error
	if err != nil {
		return nil, err
	}
	assignedToday := make(map[int64]bool, len(todayTemplateIDs))
	for _, id := range todayTemplateIDs {
		assignedToday[id] = true
	}

	var assigned []model.Quest
	for _, tmpl := range templates {
		if assignedToday[tmpl.ID] {
			continue
		}
		if _, err := decodeTargetStats(tmpl.TargetStats); err != nil {
			svc.logger.Warn("skipping template with bad target stats",
				zap.Int64("template_id", tmpl.ID), zap.Error(err))
			continue
		}
		q := model.Quest{
			UserID:           userID,
			TemplateID:       tmpl.ID,
			Title:            tmpl.Title,
			Description:      tmpl.Description,
			TargetStats:      tmpl.TargetStats,
			ExperienceReward: tmpl.BaseExperience,
			GoldReward:       tmpl.BaseGold,
			GemsReward:       tmpl.BaseGems,
			Status:           model.QuestStatusAssigned,
			DueDate:          dayEnd,
		}
		if err := svc.db.WithContext(ctx).Create(&q).Error; err != nil {
			return nil, err
		}
		assigned = append(assigned, q)
	}
	return assigned, nil
}

// List returns the user's quests, newest first, optionally filtered by status.
func (svc *Service) List(ctx context.Context, userID int64, status string) ([]model.Quest, error) {
	query := svc.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var quests []model.Quest
	if err := query.Order("assigned_date DESC").Find(&quests).Error; err != nil {
		return nil, err
	}
	return quests, nil
}

// ListCompletions returns the user's completion records, newest first.
func (svc *Service) ListCompletions(ctx context.Context, userID int64, limit int) ([]model.QuestCompletion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var completions []model.QuestCompletion
	err := svc.db.WithContext(ctx).
		Joins("JOIN quests ON quests.id = quest_completions.quest_id").
		Where("quests.user_id = ?", userID).
		Order("quest_completions.completion_time DESC").
		Limit(limit).
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

// Start moves an assigned quest to in_progress and stamps the start time.
func (svc *Service) Start(ctx context.Context, userID, questID int64) (*model.Quest, error) {
	var q model.Quest
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadUserQuest(tx, userID, questID, &q); err != nil {
			return err
		}
		if q.Status != model.QuestStatusAssigned {
			return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, q.Status)
		}
		now := time.Now()
		q.Status = model.QuestStatusInProgress
		q.StartDate = &now
		return tx.Save(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CompletionInput carries the optional self-report attached to a completion.
type CompletionInput struct {
	DifficultyRating   *int
	SatisfactionRating *int
	Notes              string
}

// CompleteResult reports everything a completion changed.
type CompleteResult struct {
	Quest        *model.Quest        `json:"quest"`
	Character    *model.Character    `json:"character"`
	Streak       *model.DailyStreak  `json:"streak"`
	LevelsGained int                 `json:"levels_gained"`
	Achievements []model.Achievement `json:"achievements,omitempty"`
}

// Complete settles an in-progress quest in a single transaction: status
// flip, experience through the progression curve, currency credit,
// per-stat deltas with history rows, the one-time completion record,
// the daily streak update, the guild contribution for an active
// membership, and any achievement grants. A quest in any other state
// fails with ErrInvalidTransition and leaves no side effects.
func (svc *Service) Complete(ctx context.Context, userID, questID int64, in CompletionInput) (*CompleteResult, error) {
	res := &CompleteResult{}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quest
		if err := loadUserQuest(tx, userID, questID, &q); err != nil {
			return err
		}
		if q.Status != model.QuestStatusInProgress {
			return fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, q.Status)
		}

		targets, err := decodeTargetStats(q.TargetStats)
		if err != nil {
			return err
		}

		now := time.Now()
		q.Status = model.QuestStatusCompleted
		q.CompletedDate = &now
		q.Progress = 100
		if err := tx.Save(&q).Error; err != nil {
			return err
		}

		char, err := player.GetOrCreateCharacter(ctx, tx, userID)
		if err != nil {
			return err
		}

		applied, err := progression.ApplyToCharacter(char, q.ExperienceReward, svc.charCurve)
		if err != nil {
			return err
		}
		char.Gold += q.GoldReward
		char.Gems += q.GemsReward

		for _, name := range model.StatTypes {
			delta, ok := targets[name]
			if !ok || delta == 0 {
				continue
			}
			old, updated, _ := char.AddStat(name, delta)
			history := &model.StatHistory{
				CharacterID:  char.ID,
				StatType:     name,
				OldValue:     old,
				NewValue:     updated,
				ChangeReason: fmt.Sprintf("quest complete: %s", q.Title),
			}
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		completion := &model.QuestCompletion{
			QuestID:            q.ID,
			DifficultyRating:   in.DifficultyRating,
			SatisfactionRating: in.SatisfactionRating,
			UserNotes:          in.Notes,
		}
		if q.StartDate != nil {
			d := now.Sub(*q.StartDate)
			completion.ActualDuration = &d
		}
		if err := tx.Create(completion).Error; err != nil {
			return err
		}

		ds, err := player.GetOrCreateStreak(ctx, tx, userID)
		if err != nil {
			return err
		}
		streak.Record(ds, now)
		if err := tx.Save(ds).Error; err != nil {
			return err
		}

		if err := svc.creditGuildContribution(tx, userID, q.ExperienceReward); err != nil {
			return err
		}

		var completedCount int64
		if err := tx.Model(&model.Quest{}).
			Where("user_id = ? AND status = ?", userID, model.QuestStatusCompleted).
			Count(&completedCount).Error; err != nil {
			return err
		}
		granted, err := svc.achievements.CheckAndGrant(tx, userID, char, achievement.Progress{
			QuestsCompleted: completedCount,
			CurrentStreak:   ds.CurrentStreak,
			CharacterLevel:  char.Level,
		})
		if err != nil {
			return err
		}

		if err := tx.Save(char).Error; err != nil {
			return err
		}

		res.Quest = &q
		res.Character = char
		res.Streak = ds
		res.LevelsGained = applied.LevelsGained
		res.Achievements = granted
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Info("quest completed",
		zap.Int64("user_id", userID),
		zap.Int64("quest_id", questID),
		zap.Int("exp_reward", res.Quest.ExperienceReward),
		zap.Int("levels_gained", res.LevelsGained))
	return res, nil
}

// Fail moves an assigned or in-progress quest to failed. No rewards.
func (svc *Service) Fail(ctx context.Context, userID, questID int64) (*model.Quest, error) {
	var q model.Quest
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadUserQuest(tx, userID, questID, &q); err != nil {
			return err
		}
		if q.Status != model.QuestStatusAssigned && q.Status != model.QuestStatusInProgress {
			return fmt.Errorf("%w: cannot fail from %s", ErrInvalidTransition, q.Status)
		}
		q.Status = model.QuestStatusFailed
		return tx.Save(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ExpireOverdue persists the derived expired status for every
// non-terminal quest past its due date. Run periodically by the
// scheduler; IsOverdue answers the same question at query time.
func (svc *Service) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := svc.db.WithContext(ctx).Model(&model.Quest{}).
		Where("status IN ? AND due_date < ?",
			[]string{model.QuestStatusAssigned, model.QuestStatusInProgress}, now).
		Update("status", model.QuestStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		svc.logger.Info("quests expired", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// creditGuildContribution bumps the member counters and feeds the same
// experience into the guild's own curve, for users with an active
// membership. Users without a guild are skipped.
func (svc *Service) creditGuildContribution(tx *gorm.DB, userID int64, expReward int) error {
	var membership model.GuildMembership
	err := tx.Where("user_id = ? AND status = ?", userID, model.MembershipActive).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	membership.QuestsCompleted++
	membership.ContributedExperience += expReward
	if err := tx.Save(&membership).Error; err != nil {
		return err
	}

	var guild model.Guild
	if err := tx.First(&guild, membership.GuildID).Error; err != nil {
		return err
	}
	if _, err := progression.ApplyToGuild(&guild, expReward, svc.guildCurve); err != nil {
		return err
	}
	return tx.Save(&guild).Error
}

func loadUserQuest(tx *gorm.DB, userID, questID int64, q *model.Quest) error {
	err := tx.Where("id = ? AND user_id = ?", questID, userID).First(q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// decodeTargetStats parses a target-stat JSON map and validates every
// key against the closed stat set.
func decodeTargetStats(raw datatypes.JSON) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	targets := make(map[string]int)
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("quest: bad target stats: %w", err)
	}
	probe := model.Character{}
	for name := range targets {
		if _, ok := probe.Stat(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStat, name)
		}
	}
	return targets, nil
}
