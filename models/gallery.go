package models

import (
	"time"

	"gorm.io/gorm"
)

// Gallery is one analyzed upload: the stored working image and thumbnail
// paths, the parameters the description was generated with, and the
// description itself. Records are immutable after creation.
type Gallery struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"userId"`
	Image           string    `gorm:"size:512;not null" json:"image"`
	Thumbnail       string    `gorm:"size:512;not null" json:"thumbnail"`
	CreativityValue int       `gorm:"not null" json:"creativityValue"`
	ExcitementValue int       `gorm:"not null" json:"excitementValue"`
	Jinnification   bool      `gorm:"not null" json:"jinnification"`
	Description     string    `gorm:"type:text" json:"description"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BeforeCreate hook ensures the creation timestamp is set.
func (g *Gallery) BeforeCreate(tx *gorm.DB) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	return nil
}
