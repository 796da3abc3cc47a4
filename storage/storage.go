package storage

import (
	"errors"

	"github.com/askeland/bildereise/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary for users and gallery records.
// Implementations own id assignment (monotonic, never reused) and the
// createdAt timestamp of gallery records. CreateGalleryItem must be safe
// to call from concurrent uploads; insertion order follows completion
// order of the call, not submission order of the requests.
type Store interface {
	CreateUser(user *models.User) error
	GetUser(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	UpdateUser(user *models.User) error

	CreateGalleryItem(item *models.Gallery) error
	// GetGalleryItems returns all records when userID is zero, otherwise
	// only the given user's records. Newest first in both cases.
	GetGalleryItems(userID uint) ([]models.Gallery, error)
	GetGalleryItem(id uint) (*models.Gallery, error)
}
