package storage

import (
	"errors"
	"testing"

	"github.com/askeland/bildereise/models"
)

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore()

	u := models.User{Username: "kari", PasswordHash: "x"}
	if err := s.CreateUser(&u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 1 {
		t.Errorf("first user id = %d, want 1", u.ID)
	}

	got, err := s.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "kari" {
		t.Errorf("GetUser username = %q", got.Username)
	}

	// Username lookup is case-insensitive.
	if _, err := s.GetUserByUsername("KARI"); err != nil {
		t.Errorf("GetUserByUsername(KARI): %v", err)
	}

	if _, err := s.GetUser(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(99) error = %v, want ErrNotFound", err)
	}

	got.FullName = "Kari Nordmann"
	if err := s.UpdateUser(got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	again, _ := s.GetUser(u.ID)
	if again.FullName != "Kari Nordmann" {
		t.Errorf("update not persisted, FullName = %q", again.FullName)
	}

	// Updates to the returned copy must not leak into the store.
	again.FullName = "changed locally"
	fresh, _ := s.GetUser(u.ID)
	if fresh.FullName != "Kari Nordmann" {
		t.Errorf("store returned shared state")
	}
}

func TestMemoryStoreGalleryOrderingAndFilter(t *testing.T) {
	s := NewMemoryStore()

	for i := 0; i < 3; i++ {
		item := models.Gallery{UserID: 1, Description: "en beskrivelse"}
		if err := s.CreateGalleryItem(&item); err != nil {
			t.Fatalf("CreateGalleryItem: %v", err)
		}
		if item.ID != uint(i+1) {
			t.Errorf("gallery id = %d, want %d", item.ID, i+1)
		}
		if item.CreatedAt.IsZero() {
			t.Errorf("CreatedAt not stamped")
		}
	}
	other := models.Gallery{UserID: 2}
	if err := s.CreateGalleryItem(&other); err != nil {
		t.Fatalf("CreateGalleryItem: %v", err)
	}

	all, err := s.GetGalleryItems(0)
	if err != nil {
		t.Fatalf("GetGalleryItems(0): %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len(all) = %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt.Before(all[i].CreatedAt) {
			t.Fatalf("items not newest first at index %d", i)
		}
		if all[i-1].CreatedAt.Equal(all[i].CreatedAt) && all[i-1].ID < all[i].ID {
			t.Fatalf("equal timestamps not ordered by id at index %d", i)
		}
	}

	mine, err := s.GetGalleryItems(1)
	if err != nil {
		t.Fatalf("GetGalleryItems(1): %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("len(mine) = %d, want 3", len(mine))
	}
	for _, item := range mine {
		if item.UserID != 1 {
			t.Errorf("filter leaked item for user %d", item.UserID)
		}
	}

	if _, err := s.GetGalleryItem(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGalleryItem(99) error = %v, want ErrNotFound", err)
	}
	got, err := s.GetGalleryItem(other.ID)
	if err != nil {
		t.Fatalf("GetGalleryItem: %v", err)
	}
	if got.UserID != 2 {
		t.Errorf("GetGalleryItem userID = %d, want 2", got.UserID)
	}
}
