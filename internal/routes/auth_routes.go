package routes

import (
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
)

func AuthRoutes(r *gin.Engine, h *controllers.Handler) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	google := r.Group("/auth/google")
	{
		google.GET("", h.GoogleLogin)
		google.GET("/callback", h.GoogleCallback)
	}
}
