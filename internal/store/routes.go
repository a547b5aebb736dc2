package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"geocache/internal/models"
)

func (s *Store) GetRoute(ctx context.Context, routeID uint) (*models.Route, error) {
	var route models.Route
	err := s.db.WithContext(ctx).
		Preload("Waypoints", orderedWaypoints).
		First(&route, routeID).Error
	if err != nil {
		return nil, notFound(err, ErrRouteNotFound)
	}
	return &route, nil
}

func orderedWaypoints(db *gorm.DB) *gorm.DB {
	return db.Order("order_id, id")
}

// ListRoutes returns every route with its waypoints, newest first.
func (s *Store) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	err := s.db.WithContext(ctx).Preload("Waypoints", orderedWaypoints).Order("id desc").Find(&routes).Error
	return routes, err
}

func (s *Store) ListRoutesByOwner(ctx context.Context, ownerID uint) ([]models.Route, error) {
	var routes []models.Route
	err := s.db.WithContext(ctx).
		Preload("Waypoints", orderedWaypoints).
		Where("owner_id = ?", ownerID).
		Order("id desc").
		Find(&routes).Error
	return routes, err
}

func (s *Store) GetWaypoint(ctx context.Context, waypointID uint) (*models.Waypoint, error) {
	var wp models.Waypoint
	if err := s.db.WithContext(ctx).First(&wp, waypointID).Error; err != nil {
		return nil, notFound(err, ErrWaypointNotFound)
	}
	return &wp, nil
}

// DeleteRoute removes a route with its waypoints, their visits, and memberships.
func (s *Store) DeleteRoute(ctx context.Context, routeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRouteTx(tx, routeID)
	})
}

func deleteRouteTx(tx *gorm.DB, routeID uint) error {
	waypointIDs := tx.Model(&models.Waypoint{}).Select("id").Where("route_id = ?", routeID)
	if err := tx.Where("waypoint_id IN (?)", waypointIDs).Delete(&models.Visit{}).Error; err != nil {
		return fmt.Errorf("could not delete visits: %w", err)
	}
	if err := tx.Where("route_id = ?", routeID).Delete(&models.Waypoint{}).Error; err != nil {
		return fmt.Errorf("could not delete waypoints: %w", err)
	}
	if err := tx.Where("route_id = ?", routeID).Delete(&models.JoinedRoute{}).Error; err != nil {
		return fmt.Errorf("could not delete memberships: %w", err)
	}
	res := tx.Delete(&models.Route{}, routeID)
	if res.Error != nil {
		return fmt.Errorf("could not delete route: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// Player is a member of a route with the number of its waypoints they visited.
type Player struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Visited  int64  `json:"visited"`
}

func (s *Store) Players(ctx context.Context, routeID uint) ([]Player, error) {
	var players []Player
	err := s.db.WithContext(ctx).Raw(`
		SELECT users.id AS user_id, users.username AS username, COUNT(visits.id) AS visited
		FROM joined_routes
		JOIN users ON users.id = joined_routes.user_id
		LEFT JOIN waypoints ON waypoints.route_id = joined_routes.route_id
		LEFT JOIN visits ON visits.waypoint_id = waypoints.id AND visits.user_id = users.id
		WHERE joined_routes.route_id = ?
		GROUP BY users.id, users.username
		ORDER BY visited DESC, users.username`, routeID).
		Scan(&players).Error
	return players, err
}
