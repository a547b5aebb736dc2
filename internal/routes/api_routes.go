package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

// APIRoutes is the JSON API used by the external admin frontend.
func APIRoutes(r *gin.Engine, h *controllers.Handler, opts Options) {
	api := r.Group("/api")
	api.Use(middleware.APICORS(opts.CorsOrigins), middleware.RequireAPIKey(opts.APIKey))
	{
		// preflight requests are answered by the CORS middleware
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		api.GET("/", h.APIIndex)
		api.GET("/users", h.APIUsers)
		api.DELETE("/users/:id", h.APIDeleteUser)
		api.GET("/routes", h.APIRoutes)

		api.GET("/users/count", h.APIUsersCount())
		api.GET("/routes/count", h.APIRoutesCount())
		api.GET("/waypoints/count", h.APIWaypointsCount())
		api.GET("/visits/count", h.APIVisitsCount())

		board := api.Group("/leaderboard")
		{
			board.GET("/waypoints", h.APILeaderboardWaypoints())
			board.GET("/users", h.APILeaderboardUsers())
			board.GET("/routes", h.APILeaderboardRoutes())
		}
	}
}
