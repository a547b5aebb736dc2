package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"geocache/internal/models"
)

const maxTokenAttempts = 5

// EnsureVisitToken returns the visit token of a waypoint, assigning a fresh
// one the first time. Once stored, the token never changes.
func (s *Store) EnsureVisitToken(ctx context.Context, waypointID uint) (string, error) {
	db := s.db.WithContext(ctx)

	var wp models.Waypoint
	if err := db.First(&wp, waypointID).Error; err != nil {
		return "", notFound(err, ErrWaypointNotFound)
	}
	if wp.UUID != nil {
		return *wp.UUID, nil
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token := s.newToken()

		var taken int64
		if err := db.Model(&models.Waypoint{}).Where("uuid = ?", token).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("could not check visit token: %w", err)
		}
		if taken > 0 {
			continue
		}

		res := db.Model(&models.Waypoint{}).
			Where("id = ? AND uuid IS NULL", waypointID).
			Update("uuid", token)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				continue
			}
			return "", fmt.Errorf("could not store visit token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// a concurrent request assigned one first
			var current models.Waypoint
			if err := db.First(&current, waypointID).Error; err != nil {
				return "", notFound(err, ErrWaypointNotFound)
			}
			if current.UUID == nil {
				return "", ErrWaypointNotFound
			}
			return *current.UUID, nil
		}
		return token, nil
	}
	return "", ErrTokenExhausted
}

// WaypointByToken resolves a visit token.
func (s *Store) WaypointByToken(ctx context.Context, token string) (*models.Waypoint, error) {
	var wp models.Waypoint
	if err := s.db.WithContext(ctx).Where("uuid = ?", token).First(&wp).Error; err != nil {
		return nil, notFound(err, ErrWaypointNotFound)
	}
	return &wp, nil
}

// JoinRoute records that the user joined a route.
func (s *Store) JoinRoute(ctx context.Context, userID, routeID uint) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Route{}).Where("id = ?", routeID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrRouteNotFound
	}

	if err := db.Create(&models.JoinedRoute{UserID: userID, RouteID: routeID}).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("could not join route: %w", err)
	}
	return nil
}

func (s *Store) IsJoined(ctx context.Context, userID, routeID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.JoinedRoute{}).
		Where("user_id = ? AND route_id = ?", userID, routeID).
		Count(&n).Error
	return n > 0, err
}

// JoinedRouteIDs returns the set of routes the user is a member of.
func (s *Store) JoinedRouteIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.JoinedRoute{}).
		Where("user_id = ?", userID).
		Pluck("route_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// VisitedWaypointIDs returns the waypoints of a route the user has visited.
func (s *Store) VisitedWaypointIDs(ctx context.Context, userID, routeID uint) (map[uint]bool, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Joins("JOIN waypoints ON waypoints.id = visits.waypoint_id").
		Where("visits.user_id = ? AND waypoints.route_id = ?", userID, routeID).
		Pluck("visits.waypoint_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// VisitResult is what a visit attempt resolved to. It is returned alongside
// ErrNotJoined and ErrAlreadyVisited so callers can describe the route.
type VisitResult struct {
	Waypoint models.Waypoint
	Route    models.Route
	Visit    *models.Visit
}

// RecordVisit records the user's visit to the waypoint behind token. The user
// must have joined the waypoint's route and may visit each waypoint once.
func (s *Store) RecordVisit(ctx context.Context, userID uint, token string) (*VisitResult, error) {
	db := s.db.WithContext(ctx)

	wp, err := s.WaypointByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	res := &VisitResult{Waypoint: *wp}
	if err := db.Preload("Waypoints", orderedWaypoints).First(&res.Route, wp.RouteID).Error; err != nil {
		return nil, notFound(err, ErrWaypointNotFound)
	}

	joined, err := s.IsJoined(ctx, userID, wp.RouteID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return res, ErrNotJoined
	}

	var existing models.Visit
	err = db.Where("user_id = ? AND waypoint_id = ?", userID, wp.ID).First(&existing).Error
	switch {
	case err == nil:
		res.Visit = &existing
		return res, ErrAlreadyVisited
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	visit := models.Visit{UserID: userID, WaypointID: wp.ID}
	if err := db.Create(&visit).Error; err != nil {
		if isUniqueViolation(err) {
			return res, ErrAlreadyVisited
		}
		return nil, fmt.Errorf("could not record visit: %w", err)
	}
	res.Visit = &visit
	return res, nil
}
