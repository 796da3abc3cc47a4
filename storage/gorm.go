package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/askeland/bildereise/models"
)

// GormStore backs the Store interface with a SQL database through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *GormStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

func (s *GormStore) CreateGalleryItem(item *models.Gallery) error {
	return s.db.Create(item).Error
}

func (s *GormStore) GetGalleryItems(userID uint) ([]models.Gallery, error) {
	var items []models.Gallery
	query := s.db.Order("created_at DESC, id DESC")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) GetGalleryItem(id uint) (*models.Gallery, error) {
	var item models.Gallery
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
