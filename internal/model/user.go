package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a local account created on first Google login of an allow-listed
// email. There is no password credential — identity comes from the federated
// token only.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email       string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"not null"`
	Picture     *string
	LastLoginAt time.Time
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
