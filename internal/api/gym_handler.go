package api

import (
	"fmt"
	"net/http"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GymHandler holds the plan builder's service dependency.
type GymHandler struct {
	plans service.PlanService
}

// NewGymHandler creates a new GymHandler.
func NewGymHandler(plans service.PlanService) *GymHandler {
	return &GymHandler{plans: plans}
}

// --- DTOs for API (Data Transfer Objects) ---

// PlanRequest defines the expected JSON for creating or replacing a plan.
type PlanRequest struct {
	Name      string                `json:"name" binding:"required"`
	Type      domain.PlanType       `json:"type" binding:"required,oneof=plan individual"`
	Exercises []domain.PlanExercise `json:"exercises"`
	Players   []domain.PlanPlayer   `json:"players"`
	GroupID   string                `json:"groupId" binding:"omitempty,len=24,hexadecimal"`
}

func (r PlanRequest) input() service.PlanInput {
	in := service.PlanInput{Name: r.Name, Type: r.Type, Exercises: r.Exercises, Players: r.Players}
	if r.GroupID != "" {
		if id, err := primitive.ObjectIDFromHex(r.GroupID); err == nil {
			in.GroupID = &id
		}
	}
	return in
}

type DuplicatePlanRequest struct {
	Name string `json:"name"`
}

type ArchivePlanRequest struct {
	Archived *bool `json:"archived"`
}

type FolderRequest struct {
	Name string `json:"name" binding:"required"`
}

// PlanResponse is the DTO for returning plan details.
type PlanResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Type       domain.PlanType       `json:"type"`
	Exercises  []domain.PlanExercise `json:"exercises,omitempty"`
	Players    []domain.PlanPlayer   `json:"players,omitempty"`
	GroupID    *string               `json:"groupId,omitempty"`
	IsArchived bool                  `json:"isArchived"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// MapPlanToResponse converts a domain.Plan to PlanResponse DTO.
func MapPlanToResponse(p *domain.Plan) PlanResponse {
	if p == nil {
		return PlanResponse{}
	}
	resp := PlanResponse{
		ID:         p.ID.Hex(),
		Name:       p.Name,
		Type:       p.Type,
		Exercises:  p.Exercises,
		Players:    p.Players,
		IsArchived: p.IsArchived,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.GroupID != nil {
		g := p.GroupID.Hex()
		resp.GroupID = &g
	}
	return resp
}

// MapPlansToResponse converts a slice of domain.Plan to a slice of PlanResponse DTO.
func MapPlansToResponse(plans []domain.Plan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapPlanToResponse(&plans[i])
	}
	return responses
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a gym plan
// @Tags Gym
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan details"
// @Success 201 {object} PlanResponse "Plan created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /gym/plans [post]
func (h *GymHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// ListPlans godoc
// @Summary List gym plans, optionally by folder
// @Tags Gym
// @Produce json
// @Param folderId query string false "Folder id"
// @Param archived query bool false "Include archived plans"
// @Success 200 {array} PlanResponse
// @Router /gym/plans [get]
func (h *GymHandler) ListPlans(c *gin.Context) {
	var folderID *primitive.ObjectID
	if raw := c.Query("folderId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid folderId format")
			return
		}
		folderID = &id
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), folderID, c.Query("archived") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

func (h *GymHandler) GetPlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	plan, err := h.plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

func (h *GymHandler) UpdatePlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	plan, err := h.plans.UpdatePlan(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// ArchivePlan archives the plan, or restores it with {"archived": false}.
func (h *GymHandler) ArchivePlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	var req ArchivePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}
	plan, err := h.plans.SetArchived(c.Request.Context(), id, archived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

func (h *GymHandler) DuplicatePlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	var req DuplicatePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	plan, err := h.plans.DuplicatePlan(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

func (h *GymHandler) DeletePlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	if err := h.plans.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GymHandler) CreateFolder(c *gin.Context) {
	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	folder, err := h.plans.CreateFolder(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func (h *GymHandler) ListFolders(c *gin.Context) {
	folders, err := h.plans.ListFolders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

// DeleteFolder removes the folder; its plans move back to the ungrouped list.
func (h *GymHandler) DeleteFolder(c *gin.Context) {
	id, ok := objectIDParam(c, "folderId")
	if !ok {
		return
	}
	if err := h.plans.DeleteFolder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
