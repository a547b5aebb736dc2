package routes

import (
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

func AccountRoutes(r *gin.Engine, h *controllers.Handler) {
	account := r.Group("/account")
	account.Use(middleware.RequireSession())
	{
		account.GET("", h.Account)
		account.GET("/achievements", h.Achievements)
		account.POST("/delete", h.DeleteAccount)
	}
}
