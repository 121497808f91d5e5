package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"
	"courtside/team-ops/internal/syncer"

	"github.com/gin-gonic/gin"
)

// PracticeHandler serves the practice page: drills, attendance and live updates.
type PracticeHandler struct {
	practice  service.PracticeService
	hub       *syncer.Hub
	heartbeat time.Duration
}

func NewPracticeHandler(practice service.PracticeService, hub *syncer.Hub) *PracticeHandler {
	return &PracticeHandler{practice: practice, hub: hub, heartbeat: 15 * time.Second}
}

type SaveDrillsRequest struct {
	Rows   []domain.DrillRow `json:"rows"`
	Courts int               `json:"courts" binding:"gte=0"`
}

type AttendanceRequest struct {
	Present       *bool  `json:"present" binding:"required"`
	Reason        string `json:"reason"`
	ReasonDetails string `json:"reasonDetails"`
}

func (h *PracticeHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	data, err := h.practice.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *PracticeHandler) SaveDrills(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	var req SaveDrillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	data, err := h.practice.SaveDrills(c.Request.Context(), clientID(c), id, req.Rows, req.Courts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// SetAttendance updates one player locally and returns the whole attendance map at once;
// the store write follows after the debounce delay.
func (h *PracticeHandler) SetAttendance(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	attendance, err := h.practice.SetPresent(c.Request.Context(), clientID(c), id, c.Param("playerId"), service.AttendanceUpdate{
		Present:       *req.Present,
		Reason:        req.Reason,
		ReasonDetails: req.ReasonDetails,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sessionId": id.Hex(), "attendance": attendance})
}

func (h *PracticeHandler) Flush(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	if err := h.practice.Flush(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Events streams the practice document: a snapshot first, then every stored change made by
// other clients.
func (h *PracticeHandler) Events(c *gin.Context) {
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	data, err := h.practice.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	sub := h.hub.Subscribe(clientID(c), id.Hex())
	defer h.hub.Unsubscribe(sub)
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", data)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case p, open := <-sub.C:
			if !open {
				return false
			}
			c.SSEvent("practice", p)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
