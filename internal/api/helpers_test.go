package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/config"
	"github.com/kitchenbook/backend/internal/models"
	"github.com/kitchenbook/backend/internal/router"
	"github.com/kitchenbook/backend/internal/service"
	"github.com/kitchenbook/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	auth      *service.AuthService
	recipes   *service.RecipeService
	relations *service.RelationService

	salt   *models.Ingredient
	sugar  *models.Ingredient
	dinner *models.Tag
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	cfg := &config.Config{MediaDir: t.TempDir(), MediaURL: "/media"}
	logger := zap.NewNop()

	env := &testEnv{
		db:        db,
		auth:      service.NewAuthService(db, "test-secret"),
		recipes:   service.NewRecipeService(db),
		relations: service.NewRelationService(db),
		salt:      testhelpers.CreateIngredient(t, db, "salt", "g"),
		sugar:     testhelpers.CreateIngredient(t, db, "sugar", "g"),
		dinner:    testhelpers.CreateTag(t, db, "dinner", "#ff0000", "dinner"),
	}

	env.router = router.SetupRouter(router.Deps{
		DB:        db,
		Auth:      env.auth,
		Recipes:   env.recipes,
		Relations: env.relations,
		Shopping:  service.NewShoppingListService(db),
		Images:    service.NewImageService(cfg, nil, logger),
		Logger:    logger,
	})
	return env
}

// register creates an account through the auth service and returns the user
// with a valid bearer token.
func (env *testEnv) register(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user, token, err := env.auth.Register(username+"@example.com", username, "Test", "User", "s3cretpass")
	require.NoError(t, err)
	return user, token
}

// createRecipe seeds a recipe for the author directly through the service.
func (env *testEnv) createRecipe(t *testing.T, authorID uuid.UUID, name string) *models.Recipe {
	t.Helper()

	recipe, err := env.recipes.Create(authorID, &service.RecipeSubmission{
		Name:        name,
		Text:        "Cook it well.",
		Image:       "/media/recipes/" + name + ".png",
		CookingTime: 25,
		Tags:        []uuid.UUID{env.dinner.ID},
		Ingredients: []service.IngredientEntry{{ID: env.salt.ID, Amount: 5}},
	})
	require.NoError(t, err)
	return recipe
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func statusIs(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
