package api

import (
	"fmt"
	"net/http"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
)

// SurveyHandler serves both post-session surveys. The kind is bound per route group.
type SurveyHandler struct {
	surveys service.SurveyService
}

func NewSurveyHandler(surveys service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveys: surveys}
}

type SurveySubmitRequest struct {
	PlayerID string `json:"playerId"`
	RPE      int    `json:"rpe" binding:"required,min=1,max=10"`
	Legs     int    `json:"legs" binding:"omitempty,min=1,max=10"`
	Notes    string `json:"notes" binding:"max=1000"`
}

// Open snapshots the present players as the survey's respondents.
func (h *SurveyHandler) Open(kind domain.SurveyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "sessionId")
		if !ok {
			return
		}
		players, err := h.surveys.Open(c.Request.Context(), id, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": id.Hex(), "kind": kind, "players": players})
	}
}

// Submit records the caller's (or, for coaches, the named player's) answer. Resubmitting overwrites.
func (h *SurveyHandler) Submit(kind domain.SurveyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "sessionId")
		if !ok {
			return
		}
		var req SurveySubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
		playerID, ok := actingPlayer(c, req.PlayerID)
		if !ok {
			return
		}

		var err error
		if kind == domain.SurveyGym {
			err = h.surveys.SubmitGym(c.Request.Context(), id, playerID, domain.GymSurveyResponse{RPE: req.RPE, Notes: req.Notes})
		} else {
			err = h.surveys.Submit(c.Request.Context(), id, playerID, domain.SurveyResponse{RPE: req.RPE, Legs: req.Legs, Notes: req.Notes})
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *SurveyHandler) Results(kind domain.SurveyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "sessionId")
		if !ok {
			return
		}
		res, err := h.surveys.Results(c.Request.Context(), id, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
