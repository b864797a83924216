package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type SquadHandler struct {
	svc *services.SquadService
}

func NewSquadHandler(svc *services.SquadService) *SquadHandler {
	return &SquadHandler{
		svc: svc,
	}
}

type createSquadRequest struct {
	Name      string  `json:"name" binding:"required"`
	Username  string  `json:"username" binding:"required"`
	AvatarURL *string `json:"avatar_url"`
}

type joinSquadRequest struct {
	Username  string  `json:"username" binding:"required"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *SquadHandler) RegisterRoutes(router *gin.RouterGroup) {
	squads := router.Group("/squads")
	{
		squads.POST("", h.Create)
		squads.POST("/:id/join", h.Join)
		squads.DELETE("/:id/leave", h.Leave)
		squads.GET("/:id/leaderboard", h.Leaderboard)
		squads.POST("/:id/recompute", h.Recompute)
	}
}

func (h *SquadHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createSquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	squad, err := h.svc.Create(c.Request.Context(), userID, req.Username, req.Name, req.AvatarURL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSquadName) || errors.Is(err, domain.ErrInvalidUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, squad)
}

func (h *SquadHandler) Join(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req joinSquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	squad, err := h.svc.Join(c.Request.Context(), services.JoinSquadInput{
		SquadID:   c.Param("id"),
		UserID:    userID,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSquadNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "squad not found"})
		case errors.Is(err, domain.ErrSquadFull):
			c.JSON(http.StatusConflict, gin.H{"error": "squad is full"})
		case errors.Is(err, domain.ErrAlreadyMember):
			c.JSON(http.StatusConflict, gin.H{"error": "already a member of this squad"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, squad)
}

func (h *SquadHandler) Leave(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.Leave(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SquadHandler) Leaderboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	board, err := h.svc.Leaderboard(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrSquadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "squad not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *SquadHandler) Recompute(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.RecomputeAll(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrSquadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "squad not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recompute failed"})
		return
	}

	c.Status(http.StatusOK)
}
