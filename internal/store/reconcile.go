package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"geocache/internal/models"
)

// WaypointInput is one submitted waypoint. ID is set when the caller wants to
// keep an existing waypoint.
type WaypointInput struct {
	ID        *uint
	OrderID   int
	Latitude  float64
	Longitude float64
	Name      string
}

// RouteInput carries the route-level fields of a create or edit.
type RouteInput struct {
	Name      string
	Thumbnail *string
	Waypoints []WaypointInput
}

// CreateRoute inserts a route and its waypoints in one transaction.
func (s *Store) CreateRoute(ctx context.Context, ownerID uint, in RouteInput) (*models.Route, error) {
	route := models.Route{Name: in.Name, OwnerID: ownerID, Thumbnail: in.Thumbnail}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&route).Error; err != nil {
			return fmt.Errorf("could not create route: %w", err)
		}
		created, err := insertWaypoints(tx, route.ID, in.Waypoints)
		if err != nil {
			return err
		}
		route.Waypoints = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// ReconcileRoute converges the stored waypoints of a route to the submitted
// list. Waypoints whose id is not submitted are deleted with their visits,
// matched ones get their coordinates and name updated in place, and the rest
// are inserted. The route must belong to ownerID; otherwise nothing changes and
// applied is false.
func (s *Store) ReconcileRoute(ctx context.Context, routeID, ownerID uint, in RouteInput) (applied bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.Where("id = ? AND owner_id = ?", routeID, ownerID).First(&route).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&route).Updates(map[string]interface{}{
			"name":      in.Name,
			"thumbnail": in.Thumbnail,
		}).Error; err != nil {
			return fmt.Errorf("could not update route: %w", err)
		}

		var stored []models.Waypoint
		if err := tx.Where("route_id = ?", routeID).Find(&stored).Error; err != nil {
			return err
		}
		existing := make(map[uint]bool, len(stored))
		for _, wp := range stored {
			existing[wp.ID] = true
		}

		// the first descriptor naming a stored id claims it; repeats become new rows
		claimed := make(map[uint]bool)
		var fresh []WaypointInput
		var updates []WaypointInput
		for _, w := range in.Waypoints {
			if w.ID != nil && existing[*w.ID] && !claimed[*w.ID] {
				claimed[*w.ID] = true
				updates = append(updates, w)
				continue
			}
			fresh = append(fresh, w)
		}

		var doomed []uint
		for _, wp := range stored {
			if !claimed[wp.ID] {
				doomed = append(doomed, wp.ID)
			}
		}
		if len(doomed) > 0 {
			if err := tx.Where("waypoint_id IN ?", doomed).Delete(&models.Visit{}).Error; err != nil {
				return fmt.Errorf("could not delete visits: %w", err)
			}
			if err := tx.Where("id IN ?", doomed).Delete(&models.Waypoint{}).Error; err != nil {
				return fmt.Errorf("could not delete waypoints: %w", err)
			}
		}

		for _, w := range updates {
			if err := tx.Model(&models.Waypoint{}).Where("id = ?", *w.ID).Updates(map[string]interface{}{
				"latitude":  w.Latitude,
				"longitude": w.Longitude,
				"name":      w.Name,
			}).Error; err != nil {
				return fmt.Errorf("could not update waypoint %d: %w", *w.ID, err)
			}
		}

		if _, err := insertWaypoints(tx, routeID, fresh); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func insertWaypoints(tx *gorm.DB, routeID uint, in []WaypointInput) ([]models.Waypoint, error) {
	if len(in) == 0 {
		return nil, nil
	}
	sorted := make([]WaypointInput, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderID < sorted[j].OrderID })

	rows := make([]models.Waypoint, 0, len(sorted))
	for _, w := range sorted {
		rows = append(rows, models.Waypoint{
			RouteID:   routeID,
			Latitude:  w.Latitude,
			Longitude: w.Longitude,
			OrderID:   w.OrderID,
			Name:      w.Name,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not insert waypoints: %w", err)
	}
	return rows, nil
}
