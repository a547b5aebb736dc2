package routes

import (
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

// AdminRoutes is the owner dashboard. Every handler checks ownership itself.
func AdminRoutes(r *gin.Engine, h *controllers.Handler) {
	admin := r.Group("/admin/routes")
	admin.Use(middleware.RequireSession())
	{
		admin.GET("/list", h.ListOwnRoutes)
		admin.POST("/create", h.CreateRoute)
		admin.GET("/edit/:route_id", h.GetRouteForEdit)
		admin.POST("/edit/:route_id", h.EditRoute)
		admin.GET("/summary/:route_id", h.RouteSummary)
		admin.POST("/delete/:route_id", h.DeleteRoute)
		admin.GET("/qr/:waypoint_id", h.WaypointQR)
	}
}
