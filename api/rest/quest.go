package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/audit"
	"github.com/habitquest/server/game/player"
	"github.com/habitquest/server/game/quest"
	mw "github.com/habitquest/server/middleware"
	"gorm.io/gorm"
)

// QuestHandler handles quest REST endpoints.
type QuestHandler struct {
	db     *gorm.DB
	quests *quest.Service
	audit  *audit.Service
}

// NewQuestHandler creates a new QuestHandler.
func NewQuestHandler(db *gorm.DB, quests *quest.Service, auditSvc *audit.Service) *QuestHandler {
	return &QuestHandler{db: db, quests: quests, audit: auditSvc}
}

// List handles GET /api/quests?status=in_progress.
func (h *QuestHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)
	quests, err := h.quests.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

// Daily handles POST /api/quests/daily: assigns today's quests from the
// daily templates. Safe to call repeatedly.
func (h *QuestHandler) Daily(c *gin.Context) {
	userID := mw.GetUserID(c)
	assigned, err := h.quests.AssignDaily(c.Request.Context(), userID, time.Now())
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": assigned, "count": len(assigned)})
}

type assignRequest struct {
	TemplateID int64      `json:"template_id" binding:"required"`
	DueDate    *time.Time `json:"due_date"`
}

// Assign handles POST /api/quests: instantiates one quest from a template.
func (h *QuestHandler) Assign(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	due := time.Now().Add(24 * time.Hour)
	if req.DueDate != nil {
		due = *req.DueDate
	}

	q, err := h.quests.Assign(c.Request.Context(), userID, req.TemplateID, due)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Start handles POST /api/quests/:id/start.
func (h *QuestHandler) Start(c *gin.Context) {
	userID := mw.GetUserID(c)
	questID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.quests.Start(c.Request.Context(), userID, questID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, q)
}

type completeRequest struct {
	DifficultyRating   *int   `json:"difficulty_rating"   binding:"omitempty,min=1,max=5"`
	SatisfactionRating *int   `json:"satisfaction_rating" binding:"omitempty,min=1,max=5"`
	Notes              string `json:"notes"               binding:"max=2000"`
}

// Complete handles POST /api/quests/:id/complete.
func (h *QuestHandler) Complete(c *gin.Context) {
	userID := mw.GetUserID(c)
	questID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	// The self-report body is optional.
	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.quests.Complete(c.Request.Context(), userID, questID, quest.CompletionInput{
		DifficultyRating:   req.DifficultyRating,
		SatisfactionRating: req.SatisfactionRating,
		Notes:              req.Notes,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}

	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  &userID,
		Action:  "quest.complete",
		Detail:  gin.H{"quest_id": questID, "levels_gained": res.LevelsGained},
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusOK, res)
}

// Fail handles POST /api/quests/:id/fail.
func (h *QuestHandler) Fail(c *gin.Context) {
	userID := mw.GetUserID(c)
	questID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.quests.Fail(c.Request.Context(), userID, questID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, q)
}

// Streak handles GET /api/quests/streak.
func (h *QuestHandler) Streak(c *gin.Context) {
	userID := mw.GetUserID(c)
	ds, err := player.GetOrCreateStreak(c.Request.Context(), h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, ds)
}

// Completions handles GET /api/quests/completions?limit=20.
func (h *QuestHandler) Completions(c *gin.Context) {
	userID := mw.GetUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	completions, err := h.quests.ListCompletions(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"completions": completions})
}
