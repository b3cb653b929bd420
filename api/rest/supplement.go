package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/game/nutrition"
	mw "github.com/habitquest/server/middleware"
)

// ListSupplements handles GET /api/supplements.
func (h *NutritionHandler) ListSupplements(c *gin.Context) {
	supplements, err := h.svc.ListSupplements(c.Request.Context(),
		c.Query("category"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplements": supplements})
}

type addRegimenRequest struct {
	SupplementID  int64  `json:"supplement_id"  binding:"required"`
	Dosage        string `json:"dosage"         binding:"required,max=100"`
	Frequency     string `json:"frequency"      binding:"max=100"`
	Morning       bool   `json:"morning"`
	Afternoon     bool   `json:"afternoon"`
	Evening       bool   `json:"evening"`
	PersonalNotes string `json:"personal_notes" binding:"max=2000"`
}

// AddRegimen handles POST /api/supplements/mine.
func (h *NutritionHandler) AddRegimen(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req addRegimenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	us, err := h.svc.AddRegimen(c.Request.Context(), userID, nutrition.RegimenInput{
		SupplementID:  req.SupplementID,
		Dosage:        req.Dosage,
		Frequency:     req.Frequency,
		Morning:       req.Morning,
		Afternoon:     req.Afternoon,
		Evening:       req.Evening,
		PersonalNotes: req.PersonalNotes,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, us)
}

// ListRegimens handles GET /api/supplements/mine. Active regimens only
// unless ?all=true.
func (h *NutritionHandler) ListRegimens(c *gin.Context) {
	userID := mw.GetUserID(c)
	activeOnly := c.Query("all") != "true"

	regimens, err := h.svc.ListRegimens(c.Request.Context(), userID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regimens": regimens})
}

// StopRegimen handles DELETE /api/supplements/mine/:id.
func (h *NutritionHandler) StopRegimen(c *gin.Context) {
	userID := mw.GetUserID(c)
	regimenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.svc.StopRegimen(c.Request.Context(), userID, regimenID, time.Now()); err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

type logIntakeRequest struct {
	UserSupplementID int64      `json:"user_supplement_id" binding:"required"`
	TakenAt          *time.Time `json:"taken_at"`
	DosageTaken      string     `json:"dosage_taken" binding:"required,max=100"`
	TimeOfDay        string     `json:"time_of_day"  binding:"required"`
	Notes            string     `json:"notes"        binding:"max=2000"`
	SideEffects      string     `json:"side_effects" binding:"max=2000"`
}

// LogIntake handles POST /api/supplements/logs.
func (h *NutritionHandler) LogIntake(c *gin.Context) {
	userID := mw.GetUserID(c)
	var req logIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	log, err := h.svc.LogIntake(c.Request.Context(), userID, nutrition.IntakeInput{
		UserSupplementID: req.UserSupplementID,
		TakenAt:          takenAt,
		DosageTaken:      req.DosageTaken,
		TimeOfDay:        req.TimeOfDay,
		Notes:            req.Notes,
		SideEffects:      req.SideEffects,
	})
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": errMessage(err, status)})
		return
	}
	c.JSON(http.StatusCreated, log)
}

// ListIntakes handles GET /api/supplements/logs. Optional filters:
// ?regimen_id= and ?date=YYYY-MM-DD.
func (h *NutritionHandler) ListIntakes(c *gin.Context) {
	userID := mw.GetUserID(c)

	var regimenID *int64
	if raw := c.Query("regimen_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid regimen_id"})
			return
		}
		regimenID = &id
	}
	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		day = &d
	}

	logs, err := h.svc.ListIntakes(c.Request.Context(), userID, regimenID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
