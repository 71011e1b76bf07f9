package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/internal/models"
	"github.com/kitchenbook/backend/internal/service"
	"github.com/kitchenbook/backend/internal/testhelpers"
)

type recipeFixture struct {
	db      *gorm.DB
	recipes *service.RecipeService
	author  *models.User
	salt    *models.Ingredient
	sugar   *models.Ingredient
	dinner  *models.Tag
	dessert *models.Tag
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	return &recipeFixture{
		db:      db,
		recipes: service.NewRecipeService(db),
		author:  testhelpers.CreateUser(t, db, "author"),
		salt:    testhelpers.CreateIngredient(t, db, "salt", "g"),
		sugar:   testhelpers.CreateIngredient(t, db, "sugar", "g"),
		dinner:  testhelpers.CreateTag(t, db, "dinner", "#ff0000", "dinner"),
		dessert: testhelpers.CreateTag(t, db, "dessert", "#00ff00", "dessert"),
	}
}

func (f *recipeFixture) submission() *service.RecipeSubmission {
	return &service.RecipeSubmission{
		Name:        "Caramel",
		Text:        "Melt sugar, add salt.",
		Image:       "/media/recipes/caramel.png",
		CookingTime: 20,
		Tags:        []uuid.UUID{f.dessert.ID},
		Ingredients: []service.IngredientEntry{
			{ID: f.sugar.ID, Amount: 200},
			{ID: f.salt.ID, Amount: 5},
		},
	}
}

func (f *recipeFixture) countRows(t *testing.T) (recipes, links, tagLinks int64) {
	t.Helper()

	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.db.Model(&models.IngredientInRecipe{}).Count(&links).Error)
	require.NoError(t, f.db.Table("recipe_tags").Count(&tagLinks).Error)
	return recipes, links, tagLinks
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	assert.Equal(t, "Caramel", recipe.Name)
	assert.Equal(t, f.author.ID, recipe.AuthorID)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dessert", recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 2)

	recipes, links, tagLinks := f.countRows(t)
	assert.Equal(t, int64(1), recipes)
	assert.Equal(t, int64(2), links)
	assert.Equal(t, int64(1), tagLinks)
}

func TestCreateRecipeCookingTimeBelowMinimum(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.CookingTime = 0

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "cooking_time", fieldErr.Field)

	recipes, links, tagLinks := f.countRows(t)
	assert.Zero(t, recipes+links+tagLinks)
}

func TestCreateRecipeNoIngredients(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.Ingredients = nil

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "ingredients", fieldErr.Field)
	assert.Equal(t, "at least 1 ingredient required", fieldErr.Message)
}

func TestCreateRecipeUnknownIngredient(t *testing.T) {
	f := newRecipeFixture(t)

	ghost := uuid.New()
	sub := f.submission()
	sub.Ingredients = []service.IngredientEntry{{ID: ghost, Amount: 3}}

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "ingredients", fieldErr.Field)
	assert.Contains(t, fieldErr.Message, ghost.String())

	recipes, links, _ := f.countRows(t)
	assert.Zero(t, recipes+links)
}

func TestCreateRecipeAmountBelowMinimum(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.Ingredients[0].Amount = 0

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "ingredients", fieldErr.Field)
	assert.Equal(t, "amount must be at least 1", fieldErr.Message)

	recipes, links, _ := f.countRows(t)
	assert.Zero(t, recipes+links)
}

func TestCreateRecipeDuplicateIngredients(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.Ingredients = []service.IngredientEntry{
		{ID: f.salt.ID, Amount: 5},
		{ID: f.salt.ID, Amount: 7},
	}

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "ingredients must not repeat", fieldErr.Message)

	recipes, links, _ := f.countRows(t)
	assert.Zero(t, recipes+links)
}

func TestCreateRecipeNoTags(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.Tags = nil

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "tags", fieldErr.Field)
	assert.Equal(t, "at least 1 tag required", fieldErr.Message)
}

func TestCreateRecipeDuplicateTags(t *testing.T) {
	f := newRecipeFixture(t)

	sub := f.submission()
	sub.Tags = []uuid.UUID{f.dinner.ID, f.dinner.ID}

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "tags must not repeat", fieldErr.Message)
}

func TestCreateRecipeUnknownTag(t *testing.T) {
	f := newRecipeFixture(t)

	ghost := uuid.New()
	sub := f.submission()
	sub.Tags = []uuid.UUID{ghost}

	_, err := f.recipes.Create(f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "tags", fieldErr.Field)
	assert.Contains(t, fieldErr.Message, ghost.String())
}

func TestUpdateReplacesAssociations(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	sub := f.submission()
	sub.Name = "Salted caramel"
	sub.Tags = []uuid.UUID{f.dinner.ID}
	sub.Ingredients = []service.IngredientEntry{{ID: f.salt.ID, Amount: 10}}

	updated, err := f.recipes.Update(recipe.ID, f.author.ID, sub)
	require.NoError(t, err)

	assert.Equal(t, "Salted caramel", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, f.salt.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 10, updated.Ingredients[0].Amount)

	// No stale junction rows survive the rewrite.
	_, links, tagLinks := f.countRows(t)
	assert.Equal(t, int64(1), links)
	assert.Equal(t, int64(1), tagLinks)
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	sub := f.submission()
	sub.Image = ""

	updated, err := f.recipes.Update(recipe.ID, f.author.ID, sub)
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/caramel.png", updated.Image)
}

func TestUpdateRejectsNonAuthor(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	stranger := testhelpers.CreateUser(t, f.db, "stranger")
	_, err = f.recipes.Update(recipe.ID, stranger.ID, f.submission())
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUpdateInvalidSubmissionLeavesRecipeUntouched(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	sub := f.submission()
	sub.Name = "Should not stick"
	sub.Tags = nil

	_, err = f.recipes.Update(recipe.ID, f.author.ID, sub)
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)

	reloaded, err := f.recipes.Get(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caramel", reloaded.Name)
	assert.Len(t, reloaded.Ingredients, 2)
}

func TestDeleteRecipeRemovesDependents(t *testing.T) {
	f := newRecipeFixture(t)
	relations := service.NewRelationService(f.db)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	fan := testhelpers.CreateUser(t, f.db, "fan")
	require.NoError(t, relations.AddFavorite(fan.ID, recipe.ID))
	require.NoError(t, relations.AddToCart(fan.ID, recipe.ID))

	require.NoError(t, f.recipes.Delete(recipe.ID, f.author.ID))

	recipes, links, tagLinks := f.countRows(t)
	assert.Zero(t, recipes+links+tagLinks)

	var favorites, cart int64
	require.NoError(t, f.db.Model(&models.Favorite{}).Count(&favorites).Error)
	require.NoError(t, f.db.Model(&models.ShoppingList{}).Count(&cart).Error)
	assert.Zero(t, favorites+cart)
}

func TestDeleteRecipeRejectsNonAuthor(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	stranger := testhelpers.CreateUser(t, f.db, "stranger")
	assert.ErrorIs(t, f.recipes.Delete(recipe.ID, stranger.ID), service.ErrForbidden)

	_, err = f.recipes.Get(recipe.ID)
	assert.NoError(t, err)
}

func TestGetMissingRecipe(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.recipes.Get(uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListFilterByTagSlugs(t *testing.T) {
	f := newRecipeFixture(t)

	first, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	sub := f.submission()
	sub.Name = "Stew"
	sub.Tags = []uuid.UUID{f.dinner.ID}
	_, err = f.recipes.Create(f.author.ID, sub)
	require.NoError(t, err)

	got, total, err := f.recipes.List(service.RecipeFilter{TagSlugs: []string{"dessert"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	// Any-of semantics across slugs.
	_, total, err = f.recipes.List(service.RecipeFilter{TagSlugs: []string{"dessert", "dinner"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestListFilterByAuthor(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	other := testhelpers.CreateUser(t, f.db, "other")
	sub := f.submission()
	sub.Name = "Other dish"
	_, err = f.recipes.Create(other.ID, sub)
	require.NoError(t, err)

	got, total, err := f.recipes.List(service.RecipeFilter{AuthorID: &other.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].AuthorID)
}

func TestListFavoritedFilterIgnoredForAnonymous(t *testing.T) {
	f := newRecipeFixture(t)
	relations := service.NewRelationService(f.db)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)
	require.NoError(t, relations.AddFavorite(f.author.ID, recipe.ID))

	// Anonymous viewer: the favorited filter is a no-op, not an error.
	_, total, err := f.recipes.List(service.RecipeFilter{Favorited: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// A viewer with no favorites sees nothing through the same filter.
	other := testhelpers.CreateUser(t, f.db, "other")
	_, total, err = f.recipes.List(service.RecipeFilter{Favorited: true, Viewer: &other.ID, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListInCartFilter(t *testing.T) {
	f := newRecipeFixture(t)
	relations := service.NewRelationService(f.db)

	recipe, err := f.recipes.Create(f.author.ID, f.submission())
	require.NoError(t, err)

	sub := f.submission()
	sub.Name = "Not in cart"
	_, err = f.recipes.Create(f.author.ID, sub)
	require.NoError(t, err)

	require.NoError(t, relations.AddToCart(f.author.ID, recipe.ID))

	got, total, err := f.recipes.List(service.RecipeFilter{InCart: true, Viewer: &f.author.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, recipe.ID, got[0].ID)
}

func TestListPagination(t *testing.T) {
	f := newRecipeFixture(t)

	for i := 0; i < 3; i++ {
		sub := f.submission()
		sub.Name = sub.Name + uuid.NewString()
		_, err := f.recipes.Create(f.author.ID, sub)
		require.NoError(t, err)
	}

	got, total, err := f.recipes.List(service.RecipeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)

	got, _, err = f.recipes.List(service.RecipeFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
