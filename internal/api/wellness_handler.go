package api

import (
	"fmt"
	"net/http"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
)

type WellnessHandler struct {
	wellness service.WellnessService
}

func NewWellnessHandler(wellness service.WellnessService) *WellnessHandler {
	return &WellnessHandler{wellness: wellness}
}

type WellnessSubmitRequest struct {
	Date        string `json:"date"`
	PlayerID    string `json:"playerId"`
	Sleep       int    `json:"sleep" binding:"required,min=1,max=10"`
	Fatigue     int    `json:"fatigue" binding:"required,min=1,max=10"`
	Soreness    int    `json:"soreness" binding:"required,min=1,max=10"`
	PhysioNotes string `json:"physioNotes" binding:"max=1000"`
}

func today() string { return time.Now().Format("2006-01-02") }

// Submit godoc
// @Summary Submit the morning wellness questionnaire
// @Tags Wellness
// @Accept json
// @Produce json
// @Success 200 {object} service.WellnessResult
// @Router /wellness/survey [post]
func (h *WellnessHandler) Submit(c *gin.Context) {
	var req WellnessSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	playerID, ok := actingPlayer(c, req.PlayerID)
	if !ok {
		return
	}
	date := req.Date
	if date == "" {
		date = today()
	}
	res, err := h.wellness.Submit(c.Request.Context(), date, playerID, domain.WellnessResponse{
		Sleep:       req.Sleep,
		Fatigue:     req.Fatigue,
		Soreness:    req.Soreness,
		PhysioNotes: req.PhysioNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WellnessHandler) Day(c *gin.Context) {
	date := c.DefaultQuery("date", today())
	day, err := h.wellness.Day(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *WellnessHandler) Range(c *gin.Context) {
	days, err := h.wellness.Range(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
