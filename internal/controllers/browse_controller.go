package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/middleware"
	"geocache/internal/store"
)

// BrowseRoutes lists every route. Signed-in users see which ones they joined.
func (h *Handler) BrowseRoutes(c *gin.Context) {
	ctx := c.Request.Context()
	routes, err := h.Store.ListRoutes(ctx)
	if err != nil {
		serverError(c, err, "BrowseRoutes: could not list routes")
		return
	}
	resp := toRouteResponses(routes)

	if userID, ok := middleware.UserID(c); ok {
		joined, err := h.Store.JoinedRouteIDs(ctx, userID)
		if err != nil {
			serverError(c, err, "BrowseRoutes: could not load memberships")
			return
		}
		for i := range resp {
			resp[i].Joined = boolPtr(joined[resp[i].ID])
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// JoinRoute makes the signed-in user a member of a route.
func (h *Handler) JoinRoute(c *gin.Context) {
	routeID, ok := parseID(c, "route_id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
		return
	}
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	switch err := h.Store.JoinRoute(ctx, userID, routeID); {
	case errors.Is(err, store.ErrRouteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
		return
	case errors.Is(err, store.ErrAlreadyJoined):
		c.JSON(http.StatusConflict, gin.H{"error": msgAlreadyJoined})
		return
	case err != nil:
		serverError(c, err, "JoinRoute: could not join route")
		return
	}

	route, err := h.Store.GetRoute(ctx, routeID)
	if err != nil {
		serverError(c, err, "JoinRoute: could not reload route")
		return
	}
	logrus.WithFields(logrus.Fields{"route_id": routeID, "user_id": userID}).Info("Route joined")
	resp := toRouteResponse(*route)
	resp.Joined = boolPtr(true)
	c.JSON(http.StatusCreated, gin.H{"message": "Route joined!", "data": resp})
}

// ViewRoute shows a route with its waypoints. Signed-in users also see
// whether they joined it and which waypoints they visited.
func (h *Handler) ViewRoute(c *gin.Context) {
	routeID, ok := parseID(c, "route_id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
		return
	}
	ctx := c.Request.Context()

	route, err := h.Store.GetRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, store.ErrRouteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoute})
			return
		}
		serverError(c, err, "ViewRoute: could not load route")
		return
	}
	resp := toRouteResponse(*route)

	joined := false
	if userID, ok := middleware.UserID(c); ok {
		if joined, err = h.Store.IsJoined(ctx, userID, routeID); err != nil {
			serverError(c, err, "ViewRoute: could not load membership")
			return
		}
		visited, err := h.Store.VisitedWaypointIDs(ctx, userID, routeID)
		if err != nil {
			serverError(c, err, "ViewRoute: could not load visits")
			return
		}
		for i := range resp.Waypoints {
			resp.Waypoints[i].Visited = boolPtr(visited[resp.Waypoints[i].ID])
		}
	}
	resp.Joined = boolPtr(joined)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
