package model

import "time"

// StoredCredential is the persisted copy of the buyer's bearer credential.
type StoredCredential struct {
	StorageKey string `gorm:"primaryKey;size:64;not null"`
	Value      string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
