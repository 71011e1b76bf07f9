// Seeds the ingredient and tag reference tables from JSON files, e.g.
//
//	go run ./cmd/load_ingredients -ingredients data/ingredients.json -tags data/tags.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitchenbook/backend/config"
	"github.com/kitchenbook/backend/internal/database"
	"github.com/kitchenbook/backend/internal/models"
)

type ingredientRow struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=50"`
}

type tagRow struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor"`
	Slug  string `json:"slug" validate:"required,max=50"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to ingredients JSON")
	tagsPath := flag.String("tags", "", "optional path to tags JSON")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	validate := validator.New()

	count, err := loadIngredients(db, validate, *ingredientsPath)
	if err != nil {
		logger.Fatal("failed to load ingredients", zap.Error(err))
	}
	logger.Info("ingredients loaded", zap.Int("count", count))

	if *tagsPath != "" {
		count, err := loadTags(db, validate, *tagsPath)
		if err != nil {
			logger.Fatal("failed to load tags", zap.Error(err))
		}
		logger.Info("tags loaded", zap.Int("count", count))
	}
}

func loadIngredients(db *gorm.DB, validate *validator.Validate, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var rows []ingredientRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, err
	}

	for _, row := range rows {
		if err := validate.Struct(row); err != nil {
			return 0, err
		}
		ingredient := models.Ingredient{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadTags(db *gorm.DB, validate *validator.Validate, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var rows []tagRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, err
	}

	for _, row := range rows {
		if err := validate.Struct(row); err != nil {
			return 0, err
		}
		tag := models.Tag{
			Name:  row.Name,
			Color: row.Color,
			Slug:  row.Slug,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}
