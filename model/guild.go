package model

import "time"

// GuildRole is a member's role within a guild.
type GuildRole = string

const (
	GuildRoleLeader  GuildRole = "leader"
	GuildRoleOfficer GuildRole = "officer"
	GuildRoleMember  GuildRole = "member"
)

// MembershipStatus is the state of a guild membership.
type MembershipStatus = string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
	MembershipLeft     MembershipStatus = "left"
	MembershipKicked   MembershipStatus = "kicked"
)

// GuildQuestStatus is the state of a cooperative guild quest.
type GuildQuestStatus = string

const (
	GuildQuestActive    GuildQuestStatus = "active"
	GuildQuestCompleted GuildQuestStatus = "completed"
	GuildQuestFailed    GuildQuestStatus = "failed"
	GuildQuestExpired   GuildQuestStatus = "expired"
)

// Guild is a small cooperative team (4-8 members) with its own progression.
type Guild struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	Motto                string    `gorm:"size:200" json:"motto"`
	MaxMembers           int       `gorm:"default:6" json:"max_members"` // 4-8
	IsPrivate            bool      `gorm:"default:false" json:"is_private"`
	JoinCode             *string   `gorm:"uniqueIndex;size:10" json:"join_code,omitempty"`
	Level                int       `gorm:"default:1" json:"level"`
	ExperiencePoints     int       `gorm:"default:0" json:"experience_points"`
	TotalQuestsCompleted int       `gorm:"default:0" json:"total_quests_completed"`
	Emblem               string    `gorm:"size:50;default:shield" json:"emblem"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GuildMembership links a user to a guild with a role and status.
// A user has at most one active membership across all guilds.
type GuildMembership struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID               int64     `gorm:"uniqueIndex:idx_guild_user;not null" json:"guild_id"`
	UserID                int64     `gorm:"uniqueIndex:idx_guild_user;index:idx_member_user;not null" json:"user_id"`
	Role                  string    `gorm:"size:20;default:member" json:"role"`
	Status                string    `gorm:"size:20;default:active" json:"status"`
	ContributedExperience int       `gorm:"default:0" json:"contributed_experience"`
	QuestsCompleted       int       `gorm:"default:0" json:"quests_completed"`
	JoinedAt              time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GuildQuest is a cooperative quest tracked against a shared target.
type GuildQuest struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID               int64     `gorm:"index:idx_guild_quest;not null" json:"guild_id"`
	Title                 string    `gorm:"size:200;not null" json:"title"`
	Description           string    `gorm:"type:text" json:"description"`
	TargetType            string    `gorm:"size:20;not null" json:"target_type"` // total_quests|member_participation|streak_days|stat_improvement
	TargetValue           int       `gorm:"not null" json:"target_value"`
	CurrentProgress       int       `gorm:"default:0" json:"current_progress"`
	RewardGuildExperience int       `gorm:"default:0" json:"reward_guild_experience"`
	RewardMemberExp       int       `gorm:"default:0" json:"reward_member_experience"`
	RewardMemberGold      int64     `gorm:"default:0" json:"reward_member_gold"`
	RewardMemberGems      int64     `gorm:"default:0" json:"reward_member_gems"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
	Status                string    `gorm:"size:20;default:active" json:"status"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProgressPercentage reports progress toward the target in [0,100].
func (gq *GuildQuest) ProgressPercentage() float64 {
	if gq.TargetValue == 0 {
		return 0
	}
	pct := float64(gq.CurrentProgress) / float64(gq.TargetValue) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// GuildMessage is a message posted on a guild's board.
type GuildMessage struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID     int64     `gorm:"index:idx_guild_msg;not null" json:"guild_id"`
	SenderID    int64     `gorm:"not null" json:"sender_id"`
	RecipientID *int64    `json:"recipient_id,omitempty"` // nil = whole guild
	MessageType string    `gorm:"size:20;default:general" json:"message_type"` // general|encouragement|celebration|quest_share
	Content     string    `gorm:"size:500;not null" json:"content"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
