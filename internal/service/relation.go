package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitchenbook/backend/internal/models"
)

// RelationService owns the favorite / shopping-cart / follow join tables.
// All add operations are atomic get-or-creates: the insert carries
// ON CONFLICT DO NOTHING, so the loser of a concurrent duplicate request
// observes ErrAlreadyExists instead of a constraint violation.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

func (s *RelationService) AddFavorite(userID, recipeID uuid.UUID) error {
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RelationService) RemoveFavorite(userID, recipeID uuid.UUID) error {
	res := s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPresent
	}
	return nil
}

func (s *RelationService) AddToCart(userID, recipeID uuid.UUID) error {
	item := models.ShoppingList{UserID: userID, RecipeID: recipeID}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RelationService) RemoveFromCart(userID, recipeID uuid.UUID) error {
	res := s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.ShoppingList{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPresent
	}
	return nil
}

// Follow subscribes user to author. The self-follow check runs before any
// existence check, independent of method.
func (s *RelationService) Follow(userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	var author models.User
	if err := s.db.First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RelationService) Unfollow(userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	res := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPresent
	}
	return nil
}

func (s *RelationService) IsFavorited(userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationService) IsInCart(userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.ShoppingList{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationService) IsSubscribed(userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// SubscribedAuthors returns a page of authors the user follows plus the
// unpaged total, ordered by when the follow was created.
func (s *RelationService) SubscribedAuthors(userID uuid.UUID, limit, offset int) ([]models.User, int64, error) {
	base := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("follows.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var authors []models.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}
