package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/model"
	"github.com/habitquest/server/scheduler"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db     *gorm.DB
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, sched: sched, logger: logger}
}

// Metrics returns service counters.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var users, questsCompleted, guilds, logs int64
	h.db.Model(&model.User{}).Count(&users)
	h.db.Model(&model.Quest{}).Where("status = ?", model.QuestStatusCompleted).Count(&questsCompleted)
	h.db.Model(&model.Guild{}).Count(&guilds)
	h.db.Model(&model.NutritionLog{}).Count(&logs)
	c.JSON(http.StatusOK, gin.H{
		"users":            users,
		"quests_completed": questsCompleted,
		"guilds":           guilds,
		"nutrition_logs":   logs,
		"scheduler_tasks":  h.sched.ListTickers(),
	})
}

type templateRequest struct {
	Title           string         `json:"title"       binding:"required,min=2,max=200"`
	Description     string         `json:"description" binding:"max=2000"`
	Category        string         `json:"category"    binding:"required,oneof=morning work evening night weekly challenge"`
	Difficulty      string         `json:"difficulty"  binding:"omitempty,oneof=easy normal hard epic"`
	TargetStats     map[string]int `json:"target_stats"`
	BaseExperience  int            `json:"base_experience" binding:"min=0"`
	BaseGold        int64          `json:"base_gold"       binding:"min=0"`
	BaseGems        int64          `json:"base_gems"       binding:"min=0"`
	DurationMinutes int            `json:"duration_minutes" binding:"min=0"`
	RequiredLevel   int            `json:"required_level"   binding:"min=0"`
}

// CreateTemplate handles POST /api/admin/templates.
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	probe := model.Character{}
	for name := range req.TargetStats {
		if _, ok := probe.Stat(name); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stat: " + name})
			return
		}
	}

	targetJSON, err := json.Marshal(req.TargetStats)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad target stats"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "normal"
	}
	if req.RequiredLevel == 0 {
		req.RequiredLevel = 1
	}
	tmpl := &model.QuestTemplate{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		TargetStats:     datatypes.JSON(targetJSON),
		BaseExperience:  req.BaseExperience,
		BaseGold:        req.BaseGold,
		BaseGems:        req.BaseGems,
		DurationMinutes: req.DurationMinutes,
		RequiredLevel:   req.RequiredLevel,
		IsActive:        true,
	}
	if err := h.db.Create(tmpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.logger.Info("quest template created",
		zap.Int64("template_id", tmpl.ID), zap.String("title", tmpl.Title))
	c.JSON(http.StatusCreated, tmpl)
}

// ListTemplates handles GET /api/admin/templates.
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	var templates []model.QuestTemplate
	if err := h.db.Order("id ASC").Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// SetTemplateActive handles PUT /api/admin/templates/:id/active.
func (h *AdminHandler) SetTemplateActive(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.db.Model(&model.QuestTemplate{}).Where("id = ?", templateID).
		Update("is_active", *req.IsActive)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "is_active": *req.IsActive})
}

type achievementRequest struct {
	Name             string `json:"name"        binding:"required,min=2,max=100"`
	Description      string `json:"description" binding:"max=2000"`
	Icon             string `json:"icon"        binding:"max=50"`
	RequirementType  string `json:"requirement_type" binding:"required,oneof=quest_count streak level"`
	RequirementValue int    `json:"requirement_value" binding:"required,min=1"`
	RewardGold       int64  `json:"reward_gold"       binding:"min=0"`
	RewardGems       int64  `json:"reward_gems"       binding:"min=0"`
	RewardExperience int    `json:"reward_experience" binding:"min=0"`
}

// CreateAchievement handles POST /api/admin/achievements.
func (h *AdminHandler) CreateAchievement(c *gin.Context) {
	var req achievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Icon == "" {
		req.Icon = "trophy"
	}
	a := &model.Achievement{
		Name:             req.Name,
		Description:      req.Description,
		Icon:             req.Icon,
		RequirementType:  req.RequirementType,
		RequirementValue: req.RequirementValue,
		RewardGold:       req.RewardGold,
		RewardGems:       req.RewardGems,
		RewardExperience: req.RewardExperience,
		IsActive:         true,
	}
	if err := h.db.Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "achievement name taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, a)
}

type supplementRequest struct {
	Name          string `json:"name"     binding:"required,min=2,max=100"`
	Category      string `json:"category" binding:"required,oneof=vitamin mineral protein omega herb other"`
	Description   string `json:"description"    binding:"max=2000"`
	DefaultDosage string `json:"default_dosage" binding:"max=100"`
	Precautions   string `json:"precautions"    binding:"max=2000"`
}

// CreateSupplement handles POST /api/admin/supplements.
func (h *AdminHandler) CreateSupplement(c *gin.Context) {
	var req supplementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := &model.Supplement{
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		DefaultDosage: req.DefaultDosage,
		Precautions:   req.Precautions,
		IsActive:      true,
	}
	if err := h.db.Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "supplement name taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, s)
}

// BanUser bans or unbans a user.
// POST /api/admin/users/:id/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := 1
	if req.Banned {
		status = 0
	}
	result := h.db.Model(&model.User{}).Where("id = ?", userID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	h.logger.Info("user ban status changed",
		zap.Int64("user_id", userID), zap.Bool("banned", req.Banned))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// ListSchedulerTasks returns names of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
