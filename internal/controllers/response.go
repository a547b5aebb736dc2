package controllers

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"geocache/internal/geo"
	"geocache/internal/models"
)

// RouteResponse is the API view of a route. Geometry is the GeoJSON path
// through its waypoints.
type RouteResponse struct {
	ID        uint               `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Name      string             `json:"name"`
	OwnerID   uint               `json:"owner_id"`
	Thumbnail *string            `json:"thumbnail"`
	Geometry  json.RawMessage    `json:"geometry,omitempty"`
	LengthM   float64            `json:"length_m"`
	Waypoints []WaypointResponse `json:"waypoints"`
	Joined    *bool              `json:"joined,omitempty"`
}

type WaypointResponse struct {
	ID        uint    `json:"id"`
	OrderID   int     `json:"order_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Visited   *bool   `json:"visited,omitempty"`
	VisitLink string  `json:"visit_link,omitempty"`
}

func toWaypointResponse(wp models.Waypoint) WaypointResponse {
	return WaypointResponse{
		ID:        wp.ID,
		OrderID:   wp.OrderID,
		Latitude:  wp.Latitude,
		Longitude: wp.Longitude,
		Name:      wp.Name,
	}
}

// toRouteResponse converts a models.Route to a RouteResponse
func toRouteResponse(route models.Route) RouteResponse {
	geometry, err := geo.GeoJSON(route.Waypoints)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("Could not encode route geometry")
	}
	waypoints := make([]WaypointResponse, 0, len(route.Waypoints))
	for _, wp := range route.Waypoints {
		waypoints = append(waypoints, toWaypointResponse(wp))
	}
	return RouteResponse{
		ID:        route.ID,
		CreatedAt: route.CreatedAt,
		UpdatedAt: route.UpdatedAt,
		Name:      route.Name,
		OwnerID:   route.OwnerID,
		Thumbnail: route.Thumbnail,
		Geometry:  geometry,
		LengthM:   geo.Length(route.Waypoints),
		Waypoints: waypoints,
	}
}

func toRouteResponses(routes []models.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	return out
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	GoogleLinked bool   `json:"google_linked"`
	HasPassword  bool   `json:"has_password"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		GoogleLinked: u.GoogleID != nil,
		HasPassword:  u.HasPassword(),
	}
}

func boolPtr(b bool) *bool { return &b }
