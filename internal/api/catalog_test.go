package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenbook/backend/internal/api"
	"github.com/kitchenbook/backend/internal/testhelpers"
)

func TestListTagsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateTag(t, env.db, "breakfast", "#0000ff", "breakfast")

	w := env.do(t, http.MethodGet, "/api/v1/tags", "", nil)
	statusIs(t, w, http.StatusOK)

	var tags []api.TagResponse
	decodeJSON(t, w, &tags)
	require.Len(t, tags, 2)
	// Ordered by name.
	assert.Equal(t, "breakfast", tags[0].Slug)
	assert.Equal(t, "dinner", tags[1].Slug)
}

func TestGetTagEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/tags/"+env.dinner.ID.String(), "", nil)
	statusIs(t, w, http.StatusOK)

	var tag api.TagResponse
	decodeJSON(t, w, &tag)
	assert.Equal(t, "dinner", tag.Slug)
	assert.Equal(t, "#ff0000", tag.Color)

	w = env.do(t, http.MethodGet, "/api/v1/tags/"+uuid.NewString(), "", nil)
	statusIs(t, w, http.StatusNotFound)
}

func TestListIngredientsStartsWithFilter(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateIngredient(t, env.db, "Saffron", "g")
	testhelpers.CreateIngredient(t, env.db, "pepper", "g")

	w := env.do(t, http.MethodGet, "/api/v1/ingredients?name=sa", "", nil)
	statusIs(t, w, http.StatusOK)

	var ingredients []api.IngredientResponse
	decodeJSON(t, w, &ingredients)
	require.Len(t, ingredients, 2)

	names := []string{ingredients[0].Name, ingredients[1].Name}
	assert.ElementsMatch(t, []string{"salt", "Saffron"}, names)
}

func TestListIngredientsNoFilter(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/ingredients", "", nil)
	statusIs(t, w, http.StatusOK)

	var ingredients []api.IngredientResponse
	decodeJSON(t, w, &ingredients)
	assert.Len(t, ingredients, 2)
}

func TestGetIngredientEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/ingredients/"+env.salt.ID.String(), "", nil)
	statusIs(t, w, http.StatusOK)

	var ingredient api.IngredientResponse
	decodeJSON(t, w, &ingredient)
	assert.Equal(t, "salt", ingredient.Name)
	assert.Equal(t, "g", ingredient.MeasurementUnit)
}
