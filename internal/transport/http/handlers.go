package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"alphaforge/internal/gate"
	"alphaforge/internal/logger"
	"alphaforge/internal/recommend"
	"alphaforge/internal/usage"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps Deps
}

func (h *handlers) register(group *gin.RouterGroup) {
	group.POST("/recommend", h.handleRecommend)
	group.POST("/usage", h.handleRecordUsage)
	group.GET("/usage/stats", h.handleUsageStats)
	group.GET("/usage/report", h.handleUsageReport)
	group.GET("/templates", h.handleTemplates)
	group.POST("/gate", h.handleGate)
	group.GET("/gate/history", h.handleGateHistory)
	group.GET("/loop/summary", h.handleLoopSummary)
}

type recommendRequest struct {
	Iteration     int                           `json:"iteration"`
	Metrics       *recommend.Metrics            `json:"metrics"`
	Feedback      *recommend.ValidationFeedback `json:"validation_feedback"`
	CurrentParams map[string]any                `json:"current_params"`
	RiskProfile   string                        `json:"risk_profile"`
}

func (h *handlers) handleRecommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec := h.deps.Loop.NextRecommendation(c.Request.Context(), recommend.Request{
		Iteration:     req.Iteration,
		Metrics:       req.Metrics,
		Feedback:      req.Feedback,
		CurrentParams: req.CurrentParams,
		RiskProfile:   req.RiskProfile,
	})
	resp := gin.H{"recommendation": rec}
	if h.deps.Rationale != nil {
		resp["document"] = h.deps.Rationale.Render(rec, req.Metrics, nil)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) handleRecordUsage(c *gin.Context) {
	var rec usage.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(rec.TemplateName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_name is required"})
		return
	}
	if err := h.deps.Loop.RecordOutcome(rec); err != nil {
		logger.Errorf("record usage failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) handleUsageStats(c *gin.Context) {
	name := c.Query("template")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Usage.StatsFor(name))
}

func (h *handlers) handleUsageReport(c *gin.Context) {
	snap := h.deps.Usage.Snapshot()
	c.JSON(http.StatusOK, gin.H{"report": snap, "document": snap.Document()})
}

func (h *handlers) handleTemplates(c *gin.Context) {
	snap := h.deps.Registry.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version":   snap.Version,
		"loaded_at": snap.LoadedAt,
		"templates": snap.Templates,
	})
}

type gateRequest struct {
	ValidationResults json.RawMessage `json:"validation_results"`
	DuplicateReport   json.RawMessage `json:"duplicate_report"`
	DiversityReport   json.RawMessage `json:"diversity_report"`
}

func (h *handlers) handleGate(c *gin.Context) {
	var req gateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := gate.Evaluate(req.ValidationResults, req.DuplicateReport, req.DiversityReport)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.deps.GateLog != nil {
		if err := h.deps.GateLog.Insert(c.Request.Context(), report); err != nil {
			logger.Errorf("persist gate report failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "document": report.Document()})
}

func (h *handlers) handleGateHistory(c *gin.Context) {
	if h.deps.GateLog == nil {
		c.JSON(http.StatusOK, gin.H{"reports": []gate.Report{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	reports, err := h.deps.GateLog.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *handlers) handleLoopSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"trend":    h.deps.Loop.TrendStats(),
		"document": h.deps.Loop.Summary(),
	})
}
