package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// User - учётная запись. Логин совпадает с email при регистрации через форму.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:255" json:"username"`
	Password  string    `json:"-"`
	FullName  string    `gorm:"column:fullname" json:"fullname"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	GoogleID  *string   `gorm:"uniqueIndex" json:"-"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// SetPassword hashes pwd with bcrypt and stores the hash.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether pwd matches the stored hash.
func (u User) CheckPassword(pwd string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(pwd)) == nil
}

// DisplayName returns the full name, or the username when it is empty.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}
