package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/hub"
)

// LiveVisits streams visit events of a route to its owner over a WebSocket.
// Watchers only receive; the connection stays open until the client leaves.
func (h *Handler) LiveVisits(c *gin.Context) {
	route, ok := h.ownedRoute(c)
	if !ok {
		return
	}

	conn, err := hub.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	logrus.WithFields(logrus.Fields{
		"route_id": route.ID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Live visit feed opened.")
	h.Hub.Serve(route.ID, conn)
	logrus.WithFields(logrus.Fields{
		"route_id": route.ID,
		"watchers": h.Hub.Watchers(route.ID),
	}).Info("Live visit feed closed.")
}
