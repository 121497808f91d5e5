package api

import (
	"fmt"
	"net/http"

	"courtside/team-ops/internal/report"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportHandler serves the printable reports as JSON tables or CSV, and exports them to S3.
type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type ExportRequest struct {
	SessionID string `json:"sessionId" binding:"omitempty,len=24,hexadecimal"`
	PlanID    string `json:"planId" binding:"omitempty,len=24,hexadecimal"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// writeDocument renders doc as CSV when ?format=csv, JSON otherwise.
func writeDocument(c *gin.Context, name string, doc report.Document) {
	if c.Query("format") != "csv" {
		c.JSON(http.StatusOK, doc)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	c.Status(http.StatusOK)
	if err := doc.WriteCSV(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// RPE godoc
// @Summary Weekly RPE and session load grid
// @Tags Reports
// @Produce json
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Param format query string false "csv"
// @Router /rpe-report [get]
func (h *ReportHandler) RPE(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	rpe, err := h.reports.RPE(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		writeDocument(c, "rpe-"+from+"-"+to, rpe.Document())
		return
	}
	c.JSON(http.StatusOK, rpe)
}

// sessionReport serves a report built from one session.
func (h *ReportHandler) sessionReport(kind string, build func(*gin.Context, primitive.ObjectID) (report.Document, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "sessionId")
		if !ok {
			return
		}
		doc, err := build(c, id)
		if err != nil {
			respondError(c, err)
			return
		}
		writeDocument(c, kind+"-"+id.Hex(), doc)
	}
}

func (h *ReportHandler) Practice() gin.HandlerFunc {
	return h.sessionReport(service.ReportPractice, func(c *gin.Context, id primitive.ObjectID) (report.Document, error) {
		return h.reports.PracticeSummary(c.Request.Context(), id)
	})
}

func (h *ReportHandler) PrePractice() gin.HandlerFunc {
	return h.sessionReport(service.ReportPrePractice, func(c *gin.Context, id primitive.ObjectID) (report.Document, error) {
		return h.reports.PrePractice(c.Request.Context(), id)
	})
}

func (h *ReportHandler) Game() gin.HandlerFunc {
	return h.sessionReport(service.ReportGame, func(c *gin.Context, id primitive.ObjectID) (report.Document, error) {
		return h.reports.GameMinutes(c.Request.Context(), id)
	})
}

func (h *ReportHandler) GymPlan(c *gin.Context) {
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	doc, err := h.reports.GymPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	writeDocument(c, service.ReportGymPlan+"-"+id.Hex(), doc)
}

// Export godoc
// @Summary Upload a report as CSV and return a presigned download URL
// @Tags Reports
// @Accept json
// @Produce json
// @Param kind path string true "practice | pre-practice | rpe | gym-plan | game"
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Export storage not configured"
// @Router /reports/{kind}/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	rr := service.ReportRequest{Kind: c.Param("kind"), From: req.From, To: req.To}
	if req.SessionID != "" {
		rr.SessionID, _ = primitive.ObjectIDFromHex(req.SessionID)
	}
	if req.PlanID != "" {
		rr.PlanID, _ = primitive.ObjectIDFromHex(req.PlanID)
	}
	res, err := h.reports.Export(c.Request.Context(), rr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
