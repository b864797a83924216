package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type ReactionHandler struct {
	svc *services.ReactionService
}

func NewReactionHandler(svc *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{
		svc: svc,
	}
}

type reactRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	TargetID     string `json:"target_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Context      string `json:"context" binding:"required"`
}

func (h *ReactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	reactions := router.Group("/reactions")
	{
		reactions.POST("", h.React)
		reactions.GET("/:targetId", h.ListForTarget)
	}
}

func (h *ReactionHandler) React(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.React(c.Request.Context(), services.ReactInput{
		UserID:       userID,
		TargetUserID: req.TargetUserID,
		TargetID:     req.TargetID,
		Type:         req.Type,
		Context:      req.Context,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotSquadMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only react to your squad members"})
		case errors.Is(err, domain.ErrInvalidReactionType),
			errors.Is(err, domain.ErrInvalidReactionContext),
			errors.Is(err, domain.ErrInvalidTargetID),
			errors.Is(err, domain.ErrInvalidUserID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReactionHandler) ListForTarget(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reactions, err := h.svc.ReactionsFor(c.Request.Context(), c.Param("targetId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, reactions)
}
