package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/audit"
	"github.com/habitquest/server/game/guild"
	mw "github.com/habitquest/server/middleware"
	"github.com/habitquest/server/model"
)

// GuildHandler handles guild REST endpoints.
type GuildHandler struct {
	svc   *guild.Service
	audit *audit.Service
}

// NewGuildHandler creates a new GuildHandler.
func NewGuildHandler(svc *guild.Service, auditSvc *audit.Service) *GuildHandler {
	return &GuildHandler{svc: svc, audit: auditSvc}
}

type createGuildRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=500"`
	Motto       string `json:"motto"       binding:"max=200"`
	MaxMembers  int    `json:"max_members" binding:"omitempty,min=1,max=100"`
	IsPrivate   bool   `json:"is_private"`
	Emblem      string `json:"emblem"      binding:"max=50"`
}

// Create handles POST /api/guilds.
func (h *GuildHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req createGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.svc.Create(c.Request.Context(), userID, guild.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Motto:       req.Motto,
		MaxMembers:  req.MaxMembers,
		IsPrivate:   req.IsPrivate,
		Emblem:      req.Emblem,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}

	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  &userID,
		Action:  "guild.create",
		Detail:  gin.H{"guild_id": g.ID, "name": g.Name},
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusCreated, g)
}

// List handles GET /api/guilds: public guilds open for joining.
func (h *GuildHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	guilds, err := h.svc.ListPublic(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guilds": guilds})
}

// Mine handles GET /api/guilds/mine.
func (h *GuildHandler) Mine(c *gin.Context) {
	userID := mw.GetUserID(c)
	g, m, err := h.svc.MyGuild(c.Request.Context(), userID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild": g, "membership": m})
}

// Detail handles GET /api/guilds/:id.
func (h *GuildHandler) Detail(c *gin.Context) {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	g, err := h.svc.Get(c.Request.Context(), guildID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	members, err := h.svc.Members(c.Request.Context(), guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild": g, "member_count": len(members)})
}

type joinGuildRequest struct {
	JoinCode string `json:"join_code" binding:"max=10"`
}

// Join handles POST /api/guilds/:id/join.
func (h *GuildHandler) Join(c *gin.Context) {
	userID := mw.GetUserID(c)
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req joinGuildRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	m, err := h.svc.Join(c.Request.Context(), userID, guildID, req.JoinCode)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, m)
}

// Leave handles POST /api/guilds/leave.
func (h *GuildHandler) Leave(c *gin.Context) {
	userID := mw.GetUserID(c)
	if err := h.svc.Leave(c.Request.Context(), userID); err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left guild"})
}

// Members handles GET /api/guilds/:id/members.
func (h *GuildHandler) Members(c *gin.Context) {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	members, err := h.svc.Members(c.Request.Context(), guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type createGuildQuestRequest struct {
	Title                 string     `json:"title"       binding:"required,min=2,max=200"`
	Description           string     `json:"description" binding:"max=2000"`
	TargetType            string     `json:"target_type" binding:"required,oneof=total_quests member_participation streak_days stat_improvement"`
	TargetValue           int        `json:"target_value" binding:"required,min=1"`
	RewardGuildExperience int        `json:"reward_guild_experience" binding:"min=0"`
	RewardMemberExp       int        `json:"reward_member_experience" binding:"min=0"`
	RewardMemberGold      int64      `json:"reward_member_gold" binding:"min=0"`
	RewardMemberGems      int64      `json:"reward_member_gems" binding:"min=0"`
	EndDate               *time.Time `json:"end_date"`
}

// CreateQuest handles POST /api/guilds/quests.
func (h *GuildHandler) CreateQuest(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req createGuildQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end := time.Now().Add(7 * 24 * time.Hour)
	if req.EndDate != nil {
		end = *req.EndDate
	}

	gq, err := h.svc.CreateQuest(c.Request.Context(), userID, guild.QuestInput{
		Title:                 req.Title,
		Description:           req.Description,
		TargetType:            req.TargetType,
		TargetValue:           req.TargetValue,
		RewardGuildExperience: req.RewardGuildExperience,
		RewardMemberExp:       req.RewardMemberExp,
		RewardMemberGold:      req.RewardMemberGold,
		RewardMemberGems:      req.RewardMemberGems,
		EndDate:               end,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, gq)
}

// ListQuests handles GET /api/guilds/:id/quests.
func (h *GuildHandler) ListQuests(c *gin.Context) {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	quests, err := h.svc.ListQuests(c.Request.Context(), guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

type progressRequest struct {
	Delta int `json:"delta" binding:"required,min=1"`
}

// Progress handles POST /api/guilds/quests/:id/progress.
func (h *GuildHandler) Progress(c *gin.Context) {
	userID := mw.GetUserID(c)
	questID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gq, err := h.svc.RecordProgress(c.Request.Context(), userID, questID, req.Delta)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}

	if gq.Status == model.GuildQuestCompleted {
		h.audit.Log(audit.Entry{
			TraceID: mw.GetTraceID(c),
			UserID:  &userID,
			Action:  "guild.quest_completed",
			Detail:  gin.H{"guild_quest_id": gq.ID, "guild_id": gq.GuildID},
			IP:      c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"quest": gq, "progress_percentage": gq.ProgressPercentage()})
}

type postMessageRequest struct {
	MessageType string `json:"message_type" binding:"omitempty,oneof=general encouragement celebration quest_share"`
	Content     string `json:"content"      binding:"required,min=1,max=500"`
	RecipientID *int64 `json:"recipient_id"`
}

// PostMessage handles POST /api/guilds/messages.
func (h *GuildHandler) PostMessage(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.PostMessage(c.Request.Context(), userID, req.MessageType, req.Content, req.RecipientID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /api/guilds/messages?limit=50.
func (h *GuildHandler) ListMessages(c *gin.Context) {
	userID := mw.GetUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.svc.ListMessages(c.Request.Context(), userID, limit)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
