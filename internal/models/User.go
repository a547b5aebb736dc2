package models

import "time"

// User is an account holder. Exactly one of Password or GoogleID is set at
// creation; a password account may later be linked to a Google id.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Password *string `json:"-"`
	GoogleID *string `gorm:"uniqueIndex" json:"googleId"`

	Routes []Route `gorm:"foreignKey:OwnerID" json:"routes,omitempty"`
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}
