package model

import "time"

// Repository is the metadata row for one on-disk Git working directory.
// While the row exists, Path points at an initialised repository.
type Repository struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Path        string    `json:"-" gorm:"size:1024;not null"`
	OwnerID     uint      `json:"owner_id" gorm:"index;not null"`
	OwnerName   string    `json:"owner_name" gorm:"size:255"`
	OwnerEmail  string    `json:"owner_email" gorm:"size:255;index"`
	IsPrivate   bool      `json:"is_private" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
