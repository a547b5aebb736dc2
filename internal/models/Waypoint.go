package models

import "time"

// Waypoint is a named location on a route. OrderID positions it within the
// route; values come from the client and need not be contiguous.
type Waypoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RouteID   uint    `gorm:"index;not null" json:"route_id"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	OrderID   int     `gorm:"not null" json:"order_id"`
	Name      string  `gorm:"not null" json:"name"`

	// UUID is the visit token. Assigned once, never changed.
	UUID *string `gorm:"column:uuid;uniqueIndex" json:"-"`
}
