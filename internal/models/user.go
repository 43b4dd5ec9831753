package models

import (
	"fmt"
	"time"

	"github.com/rootly-app/rootly/internal/security"
	"gorm.io/datatypes"
)

// User represents a registered gardener account.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string `gorm:"type:varchar(50);not null"`              // Display name (not unique).
	Email        string `gorm:"type:varchar(100);not null;uniqueIndex"` // Login email.
	PasswordHash string `gorm:"type:varchar(255);not null"`             // Hashed password.

	RegionID *uint64 `gorm:"index"`                                             // Home region ID.
	Region   *Region `gorm:"foreignKey:RegionID;constraint:OnDelete:SET NULL"` // Home region.

	Preferences datatypes.JSON `gorm:"type:jsonb"` // Opaque UI preferences.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(password string) error {
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil {
		return false
	}
	return security.CheckPassword(u.PasswordHash, password)
}

func (u User) String() string {
	return fmt.Sprintf("<User user_id=%d username=%s>", u.ID, u.Username)
}
