package guild

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitquest/server/game/player"
	"github.com/habitquest/server/game/progression"
	"github.com/habitquest/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the guild or guild quest does not exist.
	ErrNotFound = errors.New("guild: not found")
	// ErrNameTaken is returned when creating a guild with a name already in use.
	ErrNameTaken = errors.New("guild: name taken")
	// ErrAlreadyInGuild is returned when the user already has an active membership.
	ErrAlreadyInGuild = errors.New("guild: already in a guild")
	// ErrNotMember is returned when the user has no active membership in the guild.
	ErrNotMember = errors.New("guild: not a member")
	// ErrGuildFull is returned when joining a guild at capacity.
	ErrGuildFull = errors.New("guild: full")
	// ErrInvalidJoinCode is returned for a wrong or missing private join code.
	ErrInvalidJoinCode = errors.New("guild: invalid join code")
	// ErrNotPermitted is returned when the member's role does not allow the action.
	ErrNotPermitted = errors.New("guild: not permitted")
	// ErrBadCapacity is returned for a max-member count outside the allowed range.
	ErrBadCapacity = errors.New("guild: capacity out of range")
	// ErrQuestNotActive is returned when progressing a finished guild quest.
	ErrQuestNotActive = errors.New("guild: quest not active")
)

// Service manages guilds, memberships and cooperative guild quests.
type Service struct {
	db         *gorm.DB
	charCurve  progression.Curve
	guildCurve progression.Curve
	minMembers int
	maxMembers int
	logger     *zap.Logger
}

// NewService creates a guild Service. minMembers and maxMembers bound
// the capacity a guild may declare.
func NewService(db *gorm.DB, charCurve, guildCurve progression.Curve, minMembers, maxMembers int, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		charCurve:  charCurve,
		guildCurve: guildCurve,
		minMembers: minMembers,
		maxMembers: maxMembers,
		logger:     logger,
	}
}

// CreateInput holds the fields for a new guild.
type CreateInput struct {
	Name        string
	Description string
	Motto       string
	MaxMembers  int
	IsPrivate   bool
	Emblem      string
}

// Create makes a new guild with the caller as leader. Private guilds
// get a generated join code.
func (svc *Service) Create(ctx context.Context, userID int64, in CreateInput) (*model.Guild, error) {
	if in.MaxMembers == 0 {
		in.MaxMembers = 6
	}
	if in.MaxMembers < svc.minMembers || in.MaxMembers > svc.maxMembers {
		return nil, fmt.Errorf("%w: %d not in [%d,%d]", ErrBadCapacity, in.MaxMembers, svc.minMembers, svc.maxMembers)
	}
	if in.Emblem == "" {
		in.Emblem = "shield"
	}

	guild := &model.Guild{
		Name:        in.Name,
		Description: in.Description,
		Motto:       in.Motto,
		MaxMembers:  in.MaxMembers,
		IsPrivate:   in.IsPrivate,
		Level:       1,
		Emblem:      in.Emblem,
	}
	if in.IsPrivate {
		code := newJoinCode()
		guild.JoinCode = &code
	}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireNoActiveMembership(tx, userID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Guild{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrNameTaken
		}
		if err := tx.Create(guild).Error; err != nil {
			return err
		}
		return tx.Create(&model.GuildMembership{
			GuildID: guild.ID,
			UserID:  userID,
			Role:    model.GuildRoleLeader,
			Status:  model.MembershipActive,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Info("guild created",
		zap.Int64("guild_id", guild.ID),
		zap.Int64("leader_id", userID),
		zap.String("name", guild.Name))
	return guild, nil
}

// Join adds the user as a member. Private guilds require the join code.
func (svc *Service) Join(ctx context.Context, userID, guildID int64, joinCode string) (*model.GuildMembership, error) {
	var membership *model.GuildMembership
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireNoActiveMembership(tx, userID); err != nil {
			return err
		}
		var guild model.Guild
		if err := tx.First(&guild, guildID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if guild.IsPrivate {
			if guild.JoinCode == nil || joinCode != *guild.JoinCode {
				return ErrInvalidJoinCode
			}
		}
		var active int64
		if err := tx.Model(&model.GuildMembership{}).
			Where("guild_id = ? AND status = ?", guildID, model.MembershipActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(guild.MaxMembers) {
			return ErrGuildFull
		}

		// A prior left/kicked row for this guild is revived rather than
		// duplicated; the guild+user unique index forbids a second row.
		var prior model.GuildMembership
		err := tx.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&prior).Error
		switch {
		case err == nil:
			prior.Status = model.MembershipActive
			prior.Role = model.GuildRoleMember
			if err := tx.Save(&prior).Error; err != nil {
				return err
			}
			membership = &prior
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			m := &model.GuildMembership{
				GuildID: guildID,
				UserID:  userID,
				Role:    model.GuildRoleMember,
				Status:  model.MembershipActive,
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			membership = m
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Leave removes the user's active membership. A departing leader hands
// off to the first officer, or the earliest-joined member if there is
// none. The guild is disbanded when the last member leaves.
func (svc *Service) Leave(ctx context.Context, userID int64) error {
	return svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.GuildMembership
		err := tx.Where("user_id = ? AND status = ?", userID, model.MembershipActive).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		if err != nil {
			return err
		}

		m.Status = model.MembershipLeft
		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		var remaining []model.GuildMembership
		if err := tx.Where("guild_id = ? AND status = ?", m.GuildID, model.MembershipActive).
			Order("joined_at ASC").Find(&remaining).Error; err != nil {
			return err
		}
		if len(remaining) == 0 {
			return tx.Delete(&model.Guild{}, m.GuildID).Error
		}

		if m.Role == model.GuildRoleLeader {
			successor := remaining[0]
			for _, r := range remaining {
				if r.Role == model.GuildRoleOfficer {
					successor = r
					break
				}
			}
			successor.Role = model.GuildRoleLeader
			if err := tx.Save(&successor).Error; err != nil {
				return err
			}
			svc.logger.Info("guild leadership transferred",
				zap.Int64("guild_id", m.GuildID),
				zap.Int64("new_leader_id", successor.UserID))
		}
		return nil
	})
}

// MyGuild returns the guild and membership for the user's active
// membership, or ErrNotMember.
func (svc *Service) MyGuild(ctx context.Context, userID int64) (*model.Guild, *model.GuildMembership, error) {
	var m model.GuildMembership
	err := svc.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.MembershipActive).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotMember
	}
	if err != nil {
		return nil, nil, err
	}
	var guild model.Guild
	if err := svc.db.WithContext(ctx).First(&guild, m.GuildID).Error; err != nil {
		return nil, nil, err
	}
	return &guild, &m, nil
}

// Get returns a guild by ID.
func (svc *Service) Get(ctx context.Context, guildID int64) (*model.Guild, error) {
	var guild model.Guild
	err := svc.db.WithContext(ctx).First(&guild, guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &guild, nil
}

// ListPublic returns joinable public guilds, newest first.
func (svc *Service) ListPublic(ctx context.Context, limit int) ([]model.Guild, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var guilds []model.Guild
	err := svc.db.WithContext(ctx).
		Where("is_private = ?", false).
		Order("created_at DESC").Limit(limit).Find(&guilds).Error
	if err != nil {
		return nil, err
	}
	return guilds, nil
}

// Members returns the guild's active memberships, earliest first.
func (svc *Service) Members(ctx context.Context, guildID int64) ([]model.GuildMembership, error) {
	var members []model.GuildMembership
	err := svc.db.WithContext(ctx).
		Where("guild_id = ? AND status = ?", guildID, model.MembershipActive).
		Order("joined_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// QuestInput holds the fields for a new cooperative guild quest.
type QuestInput struct {
	Title                 string
	Description           string
	TargetType            string
	TargetValue           int
	RewardGuildExperience int
	RewardMemberExp       int
	RewardMemberGold      int64
	RewardMemberGems      int64
	EndDate               time.Time
}

// CreateQuest creates a cooperative quest. Leaders and officers only.
func (svc *Service) CreateQuest(ctx context.Context, userID int64, in QuestInput) (*model.GuildQuest, error) {
	m, err := svc.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m.Role != model.GuildRoleLeader && m.Role != model.GuildRoleOfficer {
		return nil, ErrNotPermitted
	}

	gq := &model.GuildQuest{
		GuildID:               m.GuildID,
		Title:                 in.Title,
		Description:           in.Description,
		TargetType:            in.TargetType,
		TargetValue:           in.TargetValue,
		RewardGuildExperience: in.RewardGuildExperience,
		RewardMemberExp:       in.RewardMemberExp,
		RewardMemberGold:      in.RewardMemberGold,
		RewardMemberGems:      in.RewardMemberGems,
		StartDate:             time.Now(),
		EndDate:               in.EndDate,
		Status:                model.GuildQuestActive,
	}
	if err := svc.db.WithContext(ctx).Create(gq).Error; err != nil {
		return nil, err
	}
	return gq, nil
}

// ListQuests returns the guild's cooperative quests, newest first.
func (svc *Service) ListQuests(ctx context.Context, guildID int64) ([]model.GuildQuest, error) {
	var quests []model.GuildQuest
	err := svc.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").Find(&quests).Error
	if err != nil {
		return nil, err
	}
	return quests, nil
}

// RecordProgress advances a cooperative quest by delta. When the target
// is reached the quest completes exactly once and rewards are
// distributed; re-triggering a completed quest never pays twice.
func (svc *Service) RecordProgress(ctx context.Context, userID, questID int64, delta int) (*model.GuildQuest, error) {
	if delta < 0 {
		return nil, progression.ErrNegativeGain
	}
	m, err := svc.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}

	var gq model.GuildQuest
	completed := false
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND guild_id = ?", questID, m.GuildID).First(&gq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if gq.Status != model.GuildQuestActive {
			return ErrQuestNotActive
		}

		gq.CurrentProgress += delta
		if err := tx.Save(&gq).Error; err != nil {
			return err
		}
		if gq.CurrentProgress < gq.TargetValue {
			return nil
		}

		// Conditional transition is the idempotency guard: only one
		// caller wins the active->completed flip.
		res := tx.Model(&model.GuildQuest{}).
			Where("id = ? AND status = ?", gq.ID, model.GuildQuestActive).
			Update("status", model.GuildQuestCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		gq.Status = model.GuildQuestCompleted
		completed = true

		var guild model.Guild
		if err := tx.First(&guild, gq.GuildID).Error; err != nil {
			return err
		}
		if _, err := progression.ApplyToGuild(&guild, gq.RewardGuildExperience, svc.guildCurve); err != nil {
			return err
		}
		guild.TotalQuestsCompleted++
		return tx.Save(&guild).Error
	})
	if err != nil {
		return nil, err
	}

	if completed {
		svc.distributeMemberRewards(ctx, &gq)
	}
	return &gq, nil
}

// distributeMemberRewards pays each active member in its own
// transaction so one broken member record cannot block the rest.
func (svc *Service) distributeMemberRewards(ctx context.Context, gq *model.GuildQuest) {
	members, err := svc.Members(ctx, gq.GuildID)
	if err != nil {
		svc.logger.Error("guild reward distribution: member lookup failed",
			zap.Int64("guild_quest_id", gq.ID), zap.Error(err))
		return
	}

	for _, m := range members {
		err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			char, err := player.GetOrCreateCharacter(ctx, tx, m.UserID)
			if err != nil {
				return err
			}
			if gq.RewardMemberExp > 0 {
				if _, err := progression.ApplyToCharacter(char, gq.RewardMemberExp, svc.charCurve); err != nil {
					return err
				}
			}
			char.Gold += gq.RewardMemberGold
			char.Gems += gq.RewardMemberGems
			return tx.Save(char).Error
		})
		if err != nil {
			svc.logger.Error("guild reward distribution: member payout failed",
				zap.Int64("guild_quest_id", gq.ID),
				zap.Int64("user_id", m.UserID),
				zap.Error(err))
		}
	}

	svc.logger.Info("guild quest rewards distributed",
		zap.Int64("guild_quest_id", gq.ID),
		zap.Int("members", len(members)))
}

// ExpireQuests marks active guild quests past their end date as
// expired. Run periodically by the scheduler.
func (svc *Service) ExpireQuests(ctx context.Context, now time.Time) (int64, error) {
	res := svc.db.WithContext(ctx).Model(&model.GuildQuest{}).
		Where("status = ? AND end_date < ?", model.GuildQuestActive, now).
		Update("status", model.GuildQuestExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// PostMessage posts to the guild board. Members only.
func (svc *Service) PostMessage(ctx context.Context, userID int64, messageType, content string, recipientID *int64) (*model.GuildMessage, error) {
	m, err := svc.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if messageType == "" {
		messageType = "general"
	}
	msg := &model.GuildMessage{
		GuildID:     m.GuildID,
		SenderID:    userID,
		RecipientID: recipientID,
		MessageType: messageType,
		Content:     content,
	}
	if err := svc.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns board messages visible to the user: broadcasts
// plus directs they sent or received. Newest first.
func (svc *Service) ListMessages(ctx context.Context, userID int64, limit int) ([]model.GuildMessage, error) {
	m, err := svc.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var msgs []model.GuildMessage
	err = svc.db.WithContext(ctx).
		Where("guild_id = ? AND (recipient_id IS NULL OR recipient_id = ? OR sender_id = ?)",
			m.GuildID, userID, userID).
		Order("created_at DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (svc *Service) activeMembership(ctx context.Context, userID int64) (*model.GuildMembership, error) {
	var m model.GuildMembership
	err := svc.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.MembershipActive).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func requireNoActiveMembership(tx *gorm.DB, userID int64) error {
	var count int64
	err := tx.Model(&model.GuildMembership{}).
		Where("user_id = ? AND status = ?", userID, model.MembershipActive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyInGuild
	}
	return nil
}

func newJoinCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
