package api

import (
	"fmt"
	"net/http"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves the weekly planner.
type ScheduleHandler struct {
	sessions service.SessionService
}

func NewScheduleHandler(sessions service.SessionService) *ScheduleHandler {
	return &ScheduleHandler{sessions: sessions}
}

type CreateSessionRequest struct {
	Date                 string               `json:"date" binding:"required"`
	Slot                 domain.Slot          `json:"slot" binding:"required"`
	StartTime            string               `json:"startTime"`
	Type                 domain.SessionType   `json:"type" binding:"required"`
	Title                string               `json:"title"`
	Location             string               `json:"location"`
	Notes                string               `json:"notes"`
	Courts               int                  `json:"courts"`
	TotalMinutes         int                  `json:"totalMinutes"`
	HighIntensityMinutes int                  `json:"highIntensityMinutes"`
	Parts                []domain.SessionPart `json:"parts"`
}

// weekRange returns Monday..Sunday of the week containing t.
func weekRange(t time.Time) (string, string) {
	offset := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -offset)
	return start.Format("2006-01-02"), start.AddDate(0, 0, 6).Format("2006-01-02")
}

// List godoc
// @Summary List sessions in a date range (defaults to the current week)
// @Tags Schedule
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		from, to = weekRange(time.Now())
	}
	sessions, err := h.sessions.List(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "sessions": sessions})
}

// Create godoc
// @Summary Create a session in a free (date, slot)
// @Tags Schedule
// @Accept json
// @Produce json
// @Success 201 {object} domain.Session
// @Failure 409 {object} gin.H "Slot already taken"
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	sess, err := h.sessions.Create(c.Request.Context(), &domain.Session{
		Date:                 req.Date,
		Slot:                 req.Slot,
		StartTime:            req.StartTime,
		Type:                 req.Type,
		Title:                req.Title,
		Location:             req.Location,
		Notes:                req.Notes,
		Courts:               req.Courts,
		TotalMinutes:         req.TotalMinutes,
		HighIntensityMinutes: req.HighIntensityMinutes,
		Parts:                req.Parts,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Update applies the editor drawer's partial update; moving to a taken slot returns 409.
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	var patch domain.SessionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	sess, err := h.sessions.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
