package store

import (
	"context"

	"geocache/internal/models"
)

// CountUsers and its siblings report table sizes for the admin API.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.User{})
}

func (s *Store) CountRoutes(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Route{})
}

func (s *Store) CountWaypoints(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Waypoint{})
}

func (s *Store) CountVisits(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Visit{})
}

func (s *Store) count(ctx context.Context, model interface{}) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Count(&n).Error
	return n, err
}

type WaypointRank struct {
	WaypointID uint   `json:"waypoint_id"`
	Name       string `json:"name"`
	RouteID    uint   `json:"route_id"`
	RouteName  string `json:"route_name"`
	Visits     int64  `json:"visits"`
}

type UserRank struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Visits   int64  `json:"visits"`
}

type RouteRank struct {
	RouteID     uint   `json:"route_id"`
	Name        string `json:"name"`
	Completions int64  `json:"completions"`
}

// MostVisitedWaypoints ranks waypoints by number of visits.
func (s *Store) MostVisitedWaypoints(ctx context.Context, limit int) ([]WaypointRank, error) {
	var rows []WaypointRank
	err := s.db.WithContext(ctx).Raw(`
		SELECT waypoints.id AS waypoint_id, waypoints.name AS name,
		       routes.id AS route_id, routes.name AS route_name,
		       COUNT(visits.id) AS visits
		FROM waypoints
		JOIN routes ON routes.id = waypoints.route_id
		JOIN visits ON visits.waypoint_id = waypoints.id
		GROUP BY waypoints.id, waypoints.name, routes.id, routes.name
		ORDER BY COUNT(visits.id) DESC, waypoints.id
		LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}

// MostActiveUsers ranks users by number of waypoints visited.
func (s *Store) MostActiveUsers(ctx context.Context, limit int) ([]UserRank, error) {
	var rows []UserRank
	err := s.db.WithContext(ctx).Raw(`
		SELECT users.id AS user_id, users.username AS username, COUNT(visits.id) AS visits
		FROM users
		JOIN visits ON visits.user_id = users.id
		GROUP BY users.id, users.username
		ORDER BY COUNT(visits.id) DESC, users.id
		LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}

// MostCompletedRoutes ranks routes by the number of members who visited
// every one of their waypoints.
func (s *Store) MostCompletedRoutes(ctx context.Context, limit int) ([]RouteRank, error) {
	var rows []RouteRank
	err := s.db.WithContext(ctx).Raw(`
		SELECT routes.id AS route_id, routes.name AS name, COUNT(*) AS completions
		FROM joined_routes
		JOIN routes ON routes.id = joined_routes.route_id
		WHERE (SELECT COUNT(*) FROM waypoints WHERE waypoints.route_id = routes.id) > 0
		  AND (SELECT COUNT(*) FROM visits
		       JOIN waypoints ON waypoints.id = visits.waypoint_id
		       WHERE waypoints.route_id = routes.id AND visits.user_id = joined_routes.user_id)
		    = (SELECT COUNT(*) FROM waypoints WHERE waypoints.route_id = routes.id)
		GROUP BY routes.id, routes.name
		ORDER BY COUNT(*) DESC, routes.id
		LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}
