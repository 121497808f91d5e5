package api

import (
	"fmt"
	"net/http"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
)

type RosterHandler struct {
	roster service.RosterService
}

func NewRosterHandler(roster service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

type CreatePlayerRequest struct {
	Name     string `json:"name" binding:"required"`
	Number   int    `json:"number" binding:"gte=0,lte=99"`
	Position string `json:"position"`
	Active   *bool  `json:"active"`
}

// List returns the active roster unless ?all=true.
func (h *RosterHandler) List(c *gin.Context) {
	players, err := h.roster.List(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (h *RosterHandler) Create(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	player, err := h.roster.Create(c.Request.Context(), &domain.Player{
		Name:     req.Name,
		Number:   req.Number,
		Position: req.Position,
		Active:   active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (h *RosterHandler) Update(c *gin.Context) {
	var patch service.PlayerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	player, err := h.roster.Update(c.Request.Context(), c.Param("playerId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.roster.Delete(c.Request.Context(), c.Param("playerId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
