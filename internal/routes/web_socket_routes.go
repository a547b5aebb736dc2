package routes

import (
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

func WebSocketRoutes(r *gin.Engine, h *controllers.Handler) {
	ws := r.Group("/admin/routes/live")
	ws.Use(middleware.RequireSession())
	{
		ws.GET("/:route_id", h.LiveVisits)
	}
}
