package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/internal/models"
)

// ShoppingLine is one consolidated line of the shopping-cart export.
type ShoppingLine struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListService computes the aggregated shopping-cart export.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate produces one line per distinct (ingredient name, unit) across
// every recipe in the user's cart, amounts summed, sorted by name.
// An empty cart is ErrEmptyCart, never an empty result.
func (s *ShoppingListService) Aggregate(userID uuid.UUID) ([]ShoppingLine, error) {
	var inCart int64
	err := s.db.Model(&models.ShoppingList{}).Where("user_id = ?", userID).Count(&inCart).Error
	if err != nil {
		return nil, err
	}
	if inCart == 0 {
		return nil, ErrEmptyCart
	}

	var lines []ShoppingLine
	err = s.db.Model(&models.IngredientInRecipe{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_in_recipes.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_in_recipes.ingredient_id").
		Joins("JOIN shopping_lists ON shopping_lists.recipe_id = ingredient_in_recipes.recipe_id").
		Where("shopping_lists.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Render formats the lines as the plain-text attachment body, numbered from 1.
func (s *ShoppingListService) Render(lines []ShoppingLine) string {
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d) %s — %d%s.\n",
			i+1, capitalize(line.Name), line.Amount, line.MeasurementUnit)
	}
	return b.String()
}

// Filename returns the per-user attachment name.
func (s *ShoppingListService) Filename(username string) string {
	return fmt.Sprintf("%s_shopping_cart.txt", username)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
