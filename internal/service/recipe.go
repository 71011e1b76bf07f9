package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitchenbook/backend/internal/models"
)

const (
	minCookingTime = 1
	minAmount      = 1
)

// IngredientEntry is one ingredient reference in a recipe submission.
type IngredientEntry struct {
	ID     uuid.UUID
	Amount int
}

// RecipeSubmission is the validated write-shape of a recipe. Image is the
// already-stored URL; the handler runs the image service before calling in.
type RecipeSubmission struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Tags        []uuid.UUID
	Ingredients []IngredientEntry
}

// RecipeFilter narrows the recipe listing. Favorited and InCart silently
// no-op when Viewer is nil.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uuid.UUID
	Favorited bool
	InCart    bool
	Viewer    *uuid.UUID
	Limit     int
	Offset    int
}

// RecipeService validates and persists recipe submissions atomically.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validate runs the ordered submission checks and loads the referenced tags.
// Each failure is a FieldError scoped to the offending field.
func (s *RecipeService) validate(tx *gorm.DB, sub *RecipeSubmission) ([]models.Tag, error) {
	if sub.CookingTime < minCookingTime {
		return nil, fieldErr("cooking_time", "must be at least %d", minCookingTime)
	}

	if len(sub.Ingredients) == 0 {
		return nil, fieldErr("ingredients", "at least 1 ingredient required")
	}

	ingredientIDs := make([]uuid.UUID, 0, len(sub.Ingredients))
	for _, entry := range sub.Ingredients {
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id = ?", entry.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fieldErr("ingredients", "ingredient with id=%s does not exist", entry.ID)
		}
		if entry.Amount < minAmount {
			return nil, fieldErr("ingredients", "amount must be at least %d", minAmount)
		}
		for _, seen := range ingredientIDs {
			if seen == entry.ID {
				return nil, fieldErr("ingredients", "ingredients must not repeat")
			}
		}
		ingredientIDs = append(ingredientIDs, entry.ID)
	}

	if len(sub.Tags) == 0 {
		return nil, fieldErr("tags", "at least 1 tag required")
	}

	tags := make([]models.Tag, 0, len(sub.Tags))
	seenTags := make(map[uuid.UUID]bool, len(sub.Tags))
	for _, tagID := range sub.Tags {
		var tag models.Tag
		if err := tx.First(&tag, "id = ?", tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fieldErr("tags", "tag with id=%s does not exist", tagID)
			}
			return nil, err
		}
		if seenTags[tagID] {
			return nil, fieldErr("tags", "tags must not repeat")
		}
		seenTags[tagID] = true
		tags = append(tags, tag)
	}

	return tags, nil
}

func (s *RecipeService) createLinks(tx *gorm.DB, recipeID uuid.UUID, entries []IngredientEntry) error {
	links := make([]models.IngredientInRecipe, 0, len(entries))
	for _, entry := range entries {
		links = append(links, models.IngredientInRecipe{
			RecipeID:     recipeID,
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		})
	}
	return tx.Create(&links).Error
}

// Create persists the recipe row plus all junction rows in one transaction.
// A failure partway leaves no orphaned recipe.
func (s *RecipeService) Create(authorID uuid.UUID, sub *RecipeSubmission) (*models.Recipe, error) {
	var recipeID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tags, err := s.validate(tx, sub)
		if err != nil {
			return err
		}

		recipe := models.Recipe{
			Name:        sub.Name,
			Text:        sub.Text,
			Image:       sub.Image,
			CookingTime: sub.CookingTime,
			AuthorID:    authorID,
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		if err := s.createLinks(tx, recipe.ID, sub.Ingredients); err != nil {
			return err
		}

		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(recipeID)
}

// Update applies scalar changes and fully replaces tag and ingredient links.
// The clear-then-recreate is intentional; it is not a diff.
func (s *RecipeService) Update(recipeID, actorID uuid.UUID, sub *RecipeSubmission) (*models.Recipe, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != actorID {
			return ErrForbidden
		}

		tags, err := s.validate(tx, sub)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         sub.Name,
			"text":         sub.Text,
			"cooking_time": sub.CookingTime,
		}
		if sub.Image != "" {
			updates["image"] = sub.Image
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		return s.createLinks(tx, recipe.ID, sub.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(recipeID)
}

// Delete removes the recipe and its dependent rows. Junction, favorite and
// cart rows are deleted in the same transaction so the behavior matches the
// schema-level cascades on every dialect.
func (s *RecipeService) Delete(recipeID, actorID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != actorID {
			return ErrForbidden
		}

		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingList{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get loads one recipe with author, tags and flattened ingredient lines.
func (s *RecipeService) Get(recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes, newest first, plus the unpaged total.
func (s *RecipeService) List(filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs),
		)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.Favorited && filter.Viewer != nil {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", *filter.Viewer),
		)
	}
	if filter.InCart && filter.Viewer != nil {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("shopping_lists").Select("recipe_id").Where("user_id = ?", *filter.Viewer),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ByAuthor returns the author's recipes, newest first, optionally capped.
func (s *RecipeService) ByAuthor(authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	query := s.db.Where("author_id = ?", authorID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountByAuthor returns how many recipes the author has published.
func (s *RecipeService) CountByAuthor(authorID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
