package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/internal/middleware"
	"github.com/kitchenbook/backend/internal/models"
	"github.com/kitchenbook/backend/internal/service"
)

type UserHandler struct {
	db        *gorm.DB
	relations *service.RelationService
	projector *Projector
}

func NewUserHandler(db *gorm.DB, relations *service.RelationService, projector *Projector) *UserHandler {
	return &UserHandler{db: db, relations: relations, projector: projector}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	users := router.Group("/users")

	optional := middleware.OptionalAuthMiddleware(validator)
	required := middleware.AuthMiddleware(validator)

	users.GET("", optional, h.ListUsers)
	users.GET("/me", required, h.Me)
	users.GET("/subscriptions", required, h.Subscriptions)
	users.GET("/:id", optional, h.GetUser)
	users.POST("/:id/subscribe", required, h.Subscribe)
	users.DELETE("/:id/subscribe", required, h.Unsubscribe)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	viewer := middleware.Viewer(c)
	limit, offset := pageParams(c)

	var total int64
	if err := h.db.Model(&models.User{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}

	var users []models.User
	if err := h.db.Order("created_at").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		resp, err := h.projector.User(&users[i], viewer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, PageResponse{Count: total, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	resp, err := h.projector.User(&user, middleware.Viewer(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", *viewer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	resp, err := h.projector.User(&user, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.relations.Follow(*viewer, authorID); err != nil {
		if errors.Is(err, service.ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are already subscribed to this author"})
			return
		}
		respondError(c, err)
		return
	}

	var author models.User
	if err := h.db.First(&author, "id = ?", authorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	resp, err := h.projector.Subscription(&author, viewer, recipesLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch author"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.relations.Unfollow(*viewer, authorID); err != nil {
		if errors.Is(err, service.ErrNotPresent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are not subscribed to this author"})
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the viewer's followed authors, each with an embedded
// recipe count and a recipe sub-list capped by `recipes_limit`.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, offset := pageParams(c)
	authors, total, err := h.relations.SubscribedAuthors(*viewer, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscriptions"})
		return
	}

	perAuthor := recipesLimit(c)
	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.projector.Subscription(&authors[i], viewer, perAuthor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscriptions"})
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, PageResponse{Count: total, Results: results})
}

func recipesLimit(c *gin.Context) int {
	if raw := c.Query("recipes_limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
