package models

import "time"

// Route is an ordered list of waypoints owned by a single user.
type Route struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string  `gorm:"not null" json:"name"`
	OwnerID   uint    `gorm:"index;not null" json:"owner_id"`
	Owner     *User   `gorm:"foreignKey:OwnerID" json:"-"`
	Thumbnail *string `json:"thumbnail"`

	Waypoints []Waypoint `gorm:"foreignKey:RouteID" json:"waypoints,omitempty"`
}
