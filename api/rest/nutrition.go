package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/game/nutrition"
	mw "github.com/habitquest/server/middleware"
)

// NutritionHandler handles nutrition log REST endpoints.
type NutritionHandler struct {
	svc *nutrition.Service
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(svc *nutrition.Service) *NutritionHandler {
	return &NutritionHandler{svc: svc}
}

type createLogRequest struct {
	Date               *time.Time `json:"date"`
	MealType           string     `json:"meal_type"    binding:"required"`
	MealQuality        string     `json:"meal_quality" binding:"required"`
	IncludedVegetables bool       `json:"included_vegetables"`
	IncludedProtein    bool       `json:"included_protein"`
	IncludedGrains     bool       `json:"included_grains"`
	ProperPortion      bool       `json:"proper_portion"`
	Notes              string     `json:"notes"        binding:"max=1000"`
	CaloriesEstimate   *int       `json:"calories_estimate" binding:"omitempty,min=0"`
}

// Create handles POST /api/nutrition/logs.
func (h *NutritionHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	log, err := h.svc.CreateLog(c.Request.Context(), userID, nutrition.LogInput{
		Date:               date,
		MealType:           req.MealType,
		MealQuality:        req.MealQuality,
		IncludedVegetables: req.IncludedVegetables,
		IncludedProtein:    req.IncludedProtein,
		IncludedGrains:     req.IncludedGrains,
		ProperPortion:      req.ProperPortion,
		Notes:              req.Notes,
		CaloriesEstimate:   req.CaloriesEstimate,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"log": log, "score": nutrition.LogScore(log)})
}

// List handles GET /api/nutrition/logs?days=7.
func (h *NutritionHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)
	since := sinceFromDays(c.Query("days"))
	logs, err := h.svc.ListLogs(c.Request.Context(), userID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Stats handles GET /api/nutrition/stats?days=30.
func (h *NutritionHandler) Stats(c *gin.Context) {
	userID := mw.GetUserID(c)
	since := sinceFromDays(c.Query("days"))
	stats, err := h.svc.ComputeStats(c.Request.Context(), userID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func sinceFromDays(days string) *time.Time {
	d, err := strconv.Atoi(days)
	if err != nil || d <= 0 || d > 365 {
		return nil
	}
	since := time.Now().AddDate(0, 0, -d)
	return &since
}
