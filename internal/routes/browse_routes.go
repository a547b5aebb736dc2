package routes

import (
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

func BrowseRoutes(r *gin.Engine, h *controllers.Handler) {
	routes := r.Group("/routes")
	{
		routes.GET("/browse", h.BrowseRoutes)
		routes.GET("/view/:route_id", h.ViewRoute)
		routes.POST("/join/:route_id", middleware.RequireSession(), h.JoinRoute)
	}
}

func VisitRoutes(r *gin.Engine, h *controllers.Handler) {
	r.GET("/visit/:token", middleware.RequireSession(), h.Visit)
}
