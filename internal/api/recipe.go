package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitchenbook/backend/internal/middleware"
	"github.com/kitchenbook/backend/internal/service"
)

type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingListService
	images    *service.ImageService
	projector *Projector
	logger    *zap.Logger
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingListService,
	images *service.ImageService,
	projector *Projector,
	logger *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		shopping:  shopping,
		images:    images,
		projector: projector,
		logger:    logger,
	}
}

// RegisterRoutes wires the recipe endpoints. Reads allow anonymous viewers,
// writes require auth; createLimiter is applied to POST /recipes when the
// rate limiter is configured.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, createLimiter gin.HandlerFunc) {
	recipes := router.Group("/recipes")

	optional := middleware.OptionalAuthMiddleware(validator)
	required := middleware.AuthMiddleware(validator)

	recipes.GET("", optional, h.ListRecipes)
	recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
	recipes.GET("/:id", optional, h.GetRecipe)

	create := []gin.HandlerFunc{required}
	if createLimiter != nil {
		create = append(create, createLimiter)
	}
	recipes.POST("", append(create, h.CreateRecipe)...)
	recipes.PATCH("/:id", required, h.UpdateRecipe)
	recipes.DELETE("/:id", required, h.DeleteRecipe)

	recipes.POST("/:id/favorite", required, h.AddFavorite)
	recipes.DELETE("/:id/favorite", required, h.RemoveFavorite)
	recipes.POST("/:id/shopping_cart", required, h.AddToCart)
	recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromCart)
}

func boolParam(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true"
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewer := middleware.Viewer(c)
	limit, offset := pageParams(c)

	filter := service.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: boolParam(c, "is_favorited"),
		InCart:    boolParam(c, "is_in_shopping_cart"),
		Viewer:    viewer,
		Limit:     limit,
		Offset:    offset,
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	recipes, total, err := h.recipes.List(filter)
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	results, err := h.projector.Recipes(recipes, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, PageResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.Recipe(recipe, middleware.Viewer(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) submission(c *gin.Context, req *RecipeRequest) (*service.RecipeSubmission, error) {
	image, err := h.images.StoreDataURI(c.Request.Context(), req.Image)
	if err != nil {
		return nil, err
	}

	entries := make([]service.IngredientEntry, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		entries = append(entries, service.IngredientEntry{ID: item.ID, Amount: item.Amount})
	}

	return &service.RecipeSubmission{
		Name:        req.Name,
		Text:        req.Text,
		Image:       image,
		CookingTime: req.CookingTime,
		Tags:        req.Tags,
		Ingredients: entries,
	}, nil
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"image": "required"})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	sub, err := h.submission(c, &req)
	if err != nil {
		h.logger.Error("failed to store recipe image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"image": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(*viewer, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	// Output always comes from the read-shape so computed fields are present.
	resp, err := h.projector.Recipe(recipe, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	sub, err := h.submission(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(recipeID, *viewer, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.Recipe(recipe, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.recipes.Delete(recipeID, *viewer); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toggle runs one add/remove relation operation against an existing recipe
// and answers with the short projection on add.
func (h *RecipeHandler) toggle(c *gin.Context, target string, op func(userID, recipeID uuid.UUID) error, add bool) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipe, err := h.recipes.Get(recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := op(*viewer, recipeID); err != nil {
		respondToggleError(c, err, target)
		return
	}

	if add {
		c.JSON(http.StatusCreated, h.projector.Short(recipe))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, "favorites", h.relations.AddFavorite, true)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.toggle(c, "favorites", h.relations.RemoveFavorite, false)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggle(c, "the shopping cart", h.relations.AddToCart, true)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.toggle(c, "the shopping cart", h.relations.RemoveFromCart, false)
}

// DownloadShoppingCart renders the aggregated cart as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	lines, err := h.shopping.Aggregate(*viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	username := c.GetString("username")
	filename := h.shopping.Filename(username)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.shopping.Render(lines)))
}
