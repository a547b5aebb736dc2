package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/geo"
	"geocache/internal/middleware"
	"geocache/internal/models"
	"geocache/internal/store"
	"geocache/internal/thumbnail"
	"geocache/internal/visitlink"
)

// routePayload is the create/edit body. Coordinates are pointers so that a
// missing value can be told apart from zero.
type routePayload struct {
	Name      string            `json:"name"`
	Waypoints []waypointPayload `json:"waypoints"`
}

type waypointPayload struct {
	ID      *uint    `json:"id"`
	OrderID int      `json:"order_id"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Name    string   `json:"name"`
}

// validateRoute returns a user-facing message for the first problem found,
// or "" when the payload is acceptable.
func validateRoute(p *routePayload) string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "Route name cannot be empty!"
	}
	for i := range p.Waypoints {
		w := &p.Waypoints[i]
		w.Name = strings.TrimSpace(w.Name)
		if w.Name == "" {
			return fmt.Sprintf("Waypoint name cannot be empty! (Waypoint %d)", w.OrderID)
		}
		if w.Lat == nil || w.Lng == nil {
			return fmt.Sprintf("Waypoint coordinates cannot be empty! (Waypoint %d)", w.OrderID)
		}
		if !geo.ValidCoordinates(*w.Lat, *w.Lng) {
			return fmt.Sprintf("Waypoint coordinates are out of range! (Waypoint %d)", w.OrderID)
		}
	}
	return ""
}

func (p routePayload) waypointInputs() []store.WaypointInput {
	out := make([]store.WaypointInput, 0, len(p.Waypoints))
	for _, w := range p.Waypoints {
		out = append(out, store.WaypointInput{
			ID:        w.ID,
			OrderID:   w.OrderID,
			Latitude:  *w.Lat,
			Longitude: *w.Lng,
			Name:      w.Name,
		})
	}
	return out
}

func (p routePayload) markers() []thumbnail.Marker {
	out := make([]thumbnail.Marker, 0, len(p.Waypoints))
	for _, w := range p.Waypoints {
		out = append(out, thumbnail.Marker{Lat: *w.Lat, Lng: *w.Lng})
	}
	return out
}

// bindRoute decodes and validates the body, answering the request itself
// when it is unusable.
func bindRoute(c *gin.Context) (*routePayload, bool) {
	var p routePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		logrus.WithError(err).Warn("Route payload: invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return nil, false
	}
	if msg := validateRoute(&p); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "route": p})
		return nil, false
	}
	return &p, true
}

// ownedRoute loads the route named by :route_id and checks that the signed-in
// user owns it, answering the request on failure.
func (h *Handler) ownedRoute(c *gin.Context) (*models.Route, bool) {
	routeID, ok := parseID(c, "route_id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
		return nil, false
	}
	route, err := h.Store.GetRoute(c.Request.Context(), routeID)
	if err != nil {
		if errors.Is(err, store.ErrRouteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
			return nil, false
		}
		serverError(c, err, "could not load route")
		return nil, false
	}
	userID, _ := middleware.UserID(c)
	if route.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": msgNotOwner})
		return nil, false
	}
	return route, true
}

// ListOwnRoutes lists the routes of the signed-in user.
func (h *Handler) ListOwnRoutes(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	routes, err := h.Store.ListRoutesByOwner(c.Request.Context(), userID)
	if err != nil {
		serverError(c, err, "ListOwnRoutes: could not list routes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponses(routes)})
}

// CreateRoute stores a new route with its waypoints and thumbnail.
func (h *Handler) CreateRoute(c *gin.Context) {
	p, ok := bindRoute(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	thumb := h.Thumbnails.Create(ctx, p.markers())
	route, err := h.Store.CreateRoute(ctx, userID, store.RouteInput{
		Name:      p.Name,
		Thumbnail: &thumb,
		Waypoints: p.waypointInputs(),
	})
	if err != nil {
		h.Thumbnails.Remove(&thumb)
		serverError(c, err, "CreateRoute: could not create route")
		return
	}

	logrus.WithFields(logrus.Fields{"route_id": route.ID, "owner_id": userID}).Info("Route created")
	h.Cache.Forget(ctx, statsKeys...)
	c.JSON(http.StatusCreated, gin.H{"data": toRouteResponse(*route)})
}

// GetRouteForEdit returns a route the user owns with its waypoints.
func (h *Handler) GetRouteForEdit(c *gin.Context) {
	route, ok := h.ownedRoute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponse(*route)})
}

// EditRoute renames a route and reconciles its waypoints with the submitted
// list.
func (h *Handler) EditRoute(c *gin.Context) {
	route, ok := h.ownedRoute(c)
	if !ok {
		return
	}
	p, ok := bindRoute(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	thumb := h.Thumbnails.Create(ctx, p.markers())
	applied, err := h.Store.ReconcileRoute(ctx, route.ID, userID, store.RouteInput{
		Name:      p.Name,
		Thumbnail: &thumb,
		Waypoints: p.waypointInputs(),
	})
	if err != nil {
		h.Thumbnails.Remove(&thumb)
		serverError(c, err, "EditRoute: could not update route")
		return
	}
	if !applied {
		// ownership changed or the route vanished since it was loaded
		h.Thumbnails.Remove(&thumb)
		c.JSON(http.StatusForbidden, gin.H{"error": msgNotOwner})
		return
	}
	h.Thumbnails.Remove(route.Thumbnail)

	updated, err := h.Store.GetRoute(ctx, route.ID)
	if err != nil {
		serverError(c, err, "EditRoute: could not reload route")
		return
	}
	logrus.WithField("route_id", route.ID).Info("Route updated")
	h.Cache.Forget(ctx, statsKeys...)
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponse(*updated)})
}

// RouteSummary shows the owner each waypoint's visit link and every player's
// progress.
func (h *Handler) RouteSummary(c *gin.Context) {
	route, ok := h.ownedRoute(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	resp := toRouteResponse(*route)
	for i := range resp.Waypoints {
		token, err := h.Store.EnsureVisitToken(ctx, resp.Waypoints[i].ID)
		if err != nil {
			serverError(c, err, "RouteSummary: could not issue visit link")
			return
		}
		resp.Waypoints[i].VisitLink = h.Links.Link(token)
	}

	players, err := h.Store.Players(ctx, route.ID)
	if err != nil {
		serverError(c, err, "RouteSummary: could not list players")
		return
	}
	if players == nil {
		players = []store.Player{}
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "players": players})
}

// DeleteRoute removes a route the user owns.
func (h *Handler) DeleteRoute(c *gin.Context) {
	route, ok := h.ownedRoute(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.Store.DeleteRoute(ctx, route.ID); err != nil {
		if errors.Is(err, store.ErrRouteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
			return
		}
		serverError(c, err, "DeleteRoute: could not delete route")
		return
	}
	h.Thumbnails.Remove(route.Thumbnail)
	h.Cache.Forget(ctx, statsKeys...)
	logrus.WithField("route_id", route.ID).Info("Route deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// WaypointQR serves the QR code of a waypoint's visit link, as a PNG download
// or, with ?format=datauri, as an embeddable data URI.
func (h *Handler) WaypointQR(c *gin.Context) {
	waypointID, ok := parseID(c, "waypoint_id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoWaypoint})
		return
	}
	ctx := c.Request.Context()

	wp, err := h.Store.GetWaypoint(ctx, waypointID)
	if err != nil {
		if errors.Is(err, store.ErrWaypointNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgNoWaypoint})
			return
		}
		serverError(c, err, "WaypointQR: could not load waypoint")
		return
	}
	route, err := h.Store.GetRoute(ctx, wp.RouteID)
	if err != nil {
		serverError(c, err, "WaypointQR: could not load route")
		return
	}
	userID, _ := middleware.UserID(c)
	if route.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": msgNotOwner})
		return
	}

	token, err := h.Store.EnsureVisitToken(ctx, wp.ID)
	if err != nil {
		serverError(c, err, "WaypointQR: could not issue visit link")
		return
	}
	link := h.Links.Link(token)

	if c.Query("format") == "datauri" {
		uri, err := visitlink.DataURI(link)
		if err != nil {
			logrus.WithError(err).WithField("waypoint_id", wp.ID).Error("WaypointQR: encoding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate QR code. Please try again."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"link": link, "data_uri": uri})
		return
	}

	png, err := visitlink.QRCode(link)
	if err != nil {
		logrus.WithError(err).WithField("waypoint_id", wp.ID).Error("WaypointQR: encoding failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate QR code. Please try again."})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, visitlink.FileName(route.Name, wp.Name)))
	c.Data(http.StatusOK, "image/png", png)
}
