package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type FreezeHandler struct {
	svc *services.FreezeService
}

func NewFreezeHandler(svc *services.FreezeService) *FreezeHandler {
	return &FreezeHandler{svc: svc}
}

type activateFreezeRequest struct {
	Days int `json:"days" binding:"required"`
}

func (h *FreezeHandler) RegisterRoutes(router *gin.RouterGroup) {
	freezes := router.Group("/freezes")
	{
		freezes.POST("", h.Activate)
		freezes.GET("", h.Balance)
	}
}

func (h *FreezeHandler) Activate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req activateFreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	freeze, err := h.svc.Activate(c.Request.Context(), userID, req.Days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFreezeDays) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, freeze)
}

func (h *FreezeHandler) Balance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, balance)
}
