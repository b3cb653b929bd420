package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/game/player"
	mw "github.com/habitquest/server/middleware"
	"github.com/habitquest/server/model"
	"gorm.io/gorm"
)

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	db *gorm.DB
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB) *CharacterHandler {
	return &CharacterHandler{db: db}
}

// Get handles GET /api/character. The character is created on first access.
func (h *CharacterHandler) Get(c *gin.Context) {
	userID := mw.GetUserID(c)
	char, err := player.GetOrCreateCharacter(c.Request.Context(), h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, char)
}

type updateCharacterRequest struct {
	Name string `json:"name" binding:"omitempty,min=1,max=32"`
	Skin string `json:"skin" binding:"omitempty,max=50"`
}

// Update handles PUT /api/character. Only cosmetic fields are writable.
func (h *CharacterHandler) Update(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req updateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	char, err := player.GetOrCreateCharacter(c.Request.Context(), h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Skin != "" {
		updates["skin"] = req.Skin
	}
	if len(updates) > 0 {
		if err := h.db.Model(char).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(http.StatusOK, char)
}

// Stats handles GET /api/character/stats: the stat vector plus derived scores.
func (h *CharacterHandler) Stats(c *gin.Context) {
	userID := mw.GetUserID(c)
	char, err := player.GetOrCreateCharacter(c.Request.Context(), h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	stats := make(map[string]int, len(model.StatTypes))
	for _, name := range model.StatTypes {
		v, _ := char.Stat(name)
		stats[name] = v
	}
	c.JSON(http.StatusOK, gin.H{
		"level":        char.Level,
		"experience":   char.ExperiencePoints,
		"stats":        stats,
		"total_stats":  char.TotalStats(),
		"health_score": char.HealthScore(),
	})
}

// History handles GET /api/character/history?stat=cardio&limit=50.
func (h *CharacterHandler) History(c *gin.Context) {
	userID := mw.GetUserID(c)
	char, err := player.GetOrCreateCharacter(c.Request.Context(), h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	query := h.db.Where("character_id = ?", char.ID)
	if stat := c.Query("stat"); stat != "" {
		if _, ok := char.Stat(stat); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stat"})
			return
		}
		query = query.Where("stat_type = ?", stat)
	}

	var history []model.StatHistory
	if err := query.Order("created_at DESC").Limit(limit).Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// Achievements handles GET /api/character/achievements.
func (h *CharacterHandler) Achievements(c *gin.Context) {
	userID := mw.GetUserID(c)

	var earned []model.UserAchievement
	if err := h.db.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(earned) == 0 {
		c.JSON(http.StatusOK, gin.H{"achievements": []model.Achievement{}})
		return
	}

	ids := make([]int64, len(earned))
	achievedAt := make(map[int64]interface{}, len(earned))
	for i, ua := range earned {
		ids[i] = ua.AchievementID
		achievedAt[ua.AchievementID] = ua.AchievedAt
	}
	var achievements []model.Achievement
	if err := h.db.Where("id IN ?", ids).Find(&achievements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	type earnedAchievement struct {
		model.Achievement
		AchievedAt interface{} `json:"achieved_at"`
	}
	result := make([]earnedAchievement, len(achievements))
	for i, a := range achievements {
		result[i] = earnedAchievement{Achievement: a, AchievedAt: achievedAt[a.ID]}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": result})
}
