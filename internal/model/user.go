package model

import (
	"golang.org/x/crypto/bcrypt"
)

// User is a login identity. Only the fields the session layer needs live here.
// Email is unique among live accounts; a soft-deleted account frees it.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_active,where:deleted_at IS NULL" json:"email" validate:"required,email"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string `gorm:"type:varchar(255)" json:"full_name"`
	Role         Role   `gorm:"type:varchar(50);not null;index" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Identity is what the session layer knows about the caller
type Identity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role"`
}
