package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/askeland/bildereise/models"
)

// MemoryStore keeps users and gallery records in process memory. It is
// the default backing when no database is configured; all methods are
// safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uint]models.User
	galleryItems  map[uint]models.Gallery
	userNextID    uint
	galleryNextID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]models.User),
		galleryItems:  make(map[uint]models.Gallery),
		userNextID:    1,
		galleryNextID: 1,
	}
}

func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.userNextID
	s.userNextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.DarkMode == "" {
		user.DarkMode = "auto"
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) CreateGalleryItem(item *models.Gallery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.galleryNextID
	s.galleryNextID++
	item.CreatedAt = time.Now()
	s.galleryItems[item.ID] = *item
	return nil
}

func (s *MemoryStore) GetGalleryItems(userID uint) ([]models.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Gallery, 0, len(s.galleryItems))
	for _, item := range s.galleryItems {
		if userID != 0 && item.UserID != userID {
			continue
		}
		items = append(items, item)
	}
	// Newest first; fall back to id for records created in the same tick.
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *MemoryStore) GetGalleryItem(id uint) (*models.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.galleryItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}
