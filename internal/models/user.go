// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. The password column stores a bcrypt
// hash and is never serialized into API responses.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Nickname  string         `gorm:"size:30;not null;uniqueIndex" json:"nickname"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
