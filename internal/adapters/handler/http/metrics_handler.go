package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type MetricsHandler struct {
	svc *services.MetricsService
}

func NewMetricsHandler(svc *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

func (h *MetricsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/metrics", h.GetMetrics)
	r.GET("/milestones", h.GetMilestones)
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	metrics, err := h.svc.ComputeMetrics(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *MetricsHandler) GetMilestones(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	progress, err := h.svc.GetMilestones(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute milestones"})
		return
	}

	c.JSON(http.StatusOK, progress)
}
