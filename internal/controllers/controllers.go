package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/auth"
	"geocache/internal/cache"
	"geocache/internal/hub"
	"geocache/internal/store"
	"geocache/internal/thumbnail"
	"geocache/internal/visitlink"
)

const (
	msgGenericError  = "An error occured. Please try again."
	msgNoRoute       = "No route with this id!"
	msgNotOwner      = "You are not the owner of this route!"
	msgNoWaypoint    = "No waypoint with this id!"
	msgAlreadyJoined = "You have already joined this route!"
)

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	Store      *store.Store
	Sessions   *auth.SessionSigner
	Google     auth.GoogleProvider
	Links      *visitlink.Builder
	Thumbnails *thumbnail.Generator
	Cache      *cache.Cache
	Hub        *hub.VisitHub
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// serverError logs err and answers with the generic failure message.
func serverError(c *gin.Context, err error, where string) {
	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error(where)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericError})
}
