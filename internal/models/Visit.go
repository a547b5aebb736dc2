package models

import "time"

// Visit records that a user reached a waypoint. At most one per (user, waypoint).
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID     uint `gorm:"uniqueIndex:idx_visit_user_waypoint;not null" json:"user_id"`
	WaypointID uint `gorm:"uniqueIndex:idx_visit_user_waypoint;index;not null" json:"waypoint_id"`
}
