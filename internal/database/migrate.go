package database

import (
	"gorm.io/gorm"

	"github.com/kitchenbook/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every model. All constraints
// the toggles rely on (composite unique indexes, FK cascades) live in the
// model tags, so this works for both postgres and the sqlite test databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.IngredientInRecipe{},
		&models.Favorite{},
		&models.ShoppingList{},
	)
}
