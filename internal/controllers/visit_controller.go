package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/hub"
	"geocache/internal/middleware"
	"geocache/internal/store"
)

// Visit records that the signed-in user reached the waypoint behind a visit
// link. The user must have joined the route first.
func (h *Handler) Visit(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	res, err := h.Store.RecordVisit(ctx, userID, c.Param("token"))
	switch {
	case errors.Is(err, store.ErrWaypointNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No waypoint with this link!"})
		return
	case errors.Is(err, store.ErrNotJoined):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You have not joined this route!",
			"route": toRouteResponse(res.Route),
		})
		return
	case errors.Is(err, store.ErrAlreadyVisited):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "You have already visited this waypoint!",
			"waypoint": toWaypointResponse(res.Waypoint),
			"route":    toRouteResponse(res.Route),
		})
		return
	case err != nil:
		serverError(c, err, "Visit: could not record visit")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"waypoint_id": res.Waypoint.ID,
		"route_id":    res.Route.ID,
	}).Info("Waypoint visited")
	h.Cache.Forget(ctx, statsKeys...)

	ev := hub.VisitEvent{
		RouteID:      res.Route.ID,
		WaypointID:   res.Waypoint.ID,
		WaypointName: res.Waypoint.Name,
		UserID:       userID,
		VisitedAt:    res.Visit.CreatedAt,
	}
	if user, err := h.Store.GetUser(ctx, userID); err == nil {
		ev.Username = user.Username
	}
	h.Hub.Publish(ev)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Waypoint visited!",
		"waypoint": toWaypointResponse(res.Waypoint),
		"route":    toRouteResponse(res.Route),
	})
}
