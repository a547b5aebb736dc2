package models

import "time"

// JoinedRoute records that a user joined a route.
type JoinedRoute struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID  uint `gorm:"uniqueIndex:idx_joined_user_route;not null" json:"user_id"`
	RouteID uint `gorm:"uniqueIndex:idx_joined_user_route;index;not null" json:"route_id"`
}
