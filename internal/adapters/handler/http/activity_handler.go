package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type ActivityHandler struct {
	svc *services.ActivityService
}

func NewActivityHandler(svc *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		svc: svc,
	}
}

type logActivityRequest struct {
	OccurredAt string `json:"occurred_at"`
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/activity", h.Log)
}

func (h *ActivityHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		var err error
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occurred_at format, use RFC3339"})
			return
		}
	}

	entry, err := h.svc.Log(c.Request.Context(), userID, occurredAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUserID) || errors.Is(err, domain.ErrInvalidOccurrence) || errors.Is(err, domain.ErrFutureOccurrence) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}
