package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Route{}, &Waypoint{}, &JoinedRoute{}, &Visit{}, &Achievement{}, &UserAchievement{},
	}
}
