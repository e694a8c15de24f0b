package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system
type User struct {
	BaseModel
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // Never send password in JSON

	// Relations (not always preloaded)
	RefreshTokens    []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
	ScreeningResults []ScreeningResult `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
