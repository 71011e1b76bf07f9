package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/internal/api"
	"github.com/kitchenbook/backend/internal/middleware"
	"github.com/kitchenbook/backend/internal/service"
)

// Deps carries everything the route table needs.
type Deps struct {
	DB        *gorm.DB
	Auth      *service.AuthService
	Recipes   *service.RecipeService
	Relations *service.RelationService
	Shopping  *service.ShoppingListService
	Images    *service.ImageService
	Redis     *redis.Client
	Logger    *zap.Logger
	Origins   []string
}

// SetupRouter configures the application routes.
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	projector := api.NewProjector(deps.Relations, deps.Recipes)

	var createLimiter gin.HandlerFunc
	if deps.Redis != nil {
		createLimiter = middleware.NewRecipeCreationRateLimiter(deps.Redis).RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")

	api.NewAuthHandler(deps.Auth, projector).RegisterRoutes(v1)
	api.NewUserHandler(deps.DB, deps.Relations, projector).RegisterRoutes(v1, deps.Auth)
	api.NewTagHandler(deps.DB).RegisterRoutes(v1)
	api.NewIngredientHandler(deps.DB).RegisterRoutes(v1)
	api.NewRecipeHandler(deps.Recipes, deps.Relations, deps.Shopping, deps.Images, projector, deps.Logger).
		RegisterRoutes(v1, deps.Auth, createLimiter)

	return router
}
