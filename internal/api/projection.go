package api

import (
	"github.com/google/uuid"

	"github.com/kitchenbook/backend/internal/models"
	"github.com/kitchenbook/backend/internal/service"
)

// Projector builds read-shapes against an explicit viewer identity.
// A nil viewer is an anonymous request: every is_* flag comes back false.
type Projector struct {
	relations *service.RelationService
	recipes   *service.RecipeService
}

func NewProjector(relations *service.RelationService, recipes *service.RecipeService) *Projector {
	return &Projector{relations: relations, recipes: recipes}
}

func (p *Projector) User(user *models.User, viewer *uuid.UUID) (UserResponse, error) {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if viewer != nil {
		subscribed, err := p.relations.IsSubscribed(*viewer, user.ID)
		if err != nil {
			return resp, err
		}
		resp.IsSubscribed = subscribed
	}
	return resp, nil
}

func (p *Projector) Recipe(recipe *models.Recipe, viewer *uuid.UUID) (RecipeResponse, error) {
	author, err := p.User(&recipe.Author, viewer)
	if err != nil {
		return RecipeResponse{}, err
	}

	tags := make([]TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug})
	}

	ingredients := make([]IngredientInRecipeResponse, 0, len(recipe.Ingredients))
	for _, link := range recipe.Ingredients {
		ingredients = append(ingredients, IngredientInRecipeResponse{
			ID:              link.Ingredient.ID,
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		})
	}

	resp := RecipeResponse{
		ID:          recipe.ID,
		Tags:        tags,
		Author:      author,
		Ingredients: ingredients,
		Name:        recipe.Name,
		Image:       recipe.Image,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}

	if viewer != nil {
		if resp.IsFavorited, err = p.relations.IsFavorited(*viewer, recipe.ID); err != nil {
			return resp, err
		}
		if resp.IsInShoppingCart, err = p.relations.IsInCart(*viewer, recipe.ID); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (p *Projector) Recipes(recipes []models.Recipe, viewer *uuid.UUID) ([]RecipeResponse, error) {
	result := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := p.Recipe(&recipes[i], viewer)
		if err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, nil
}

func (p *Projector) Short(recipe *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// Subscription projects a followed author with recipes_count and a recipe
// sub-list capped by recipesLimit when it is positive.
func (p *Projector) Subscription(author *models.User, viewer *uuid.UUID, recipesLimit int) (SubscriptionResponse, error) {
	user, err := p.User(author, viewer)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	count, err := p.recipes.CountByAuthor(author.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	recipes, err := p.recipes.ByAuthor(author.ID, recipesLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	shorts := make([]ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, p.Short(&recipes[i]))
	}

	return SubscriptionResponse{
		UserResponse: user,
		RecipesCount: count,
		Recipes:      shorts,
	}, nil
}
