package routes

import (
	"io"
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"geocache/internal/controllers"
	"geocache/internal/middleware"
)

// Options configures the router around the handlers.
type Options struct {
	// LogWriter receives one line per request; nil disables request logging.
	LogWriter   io.Writer
	CorsOrigins []string
	APIKey      string
}

func SetupRouter(h *controllers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.LogWriter != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(opts.LogWriter),
			ginlog.WithSkipPath([]string{"/health"}),
		))
	}
	r.Use(middleware.Session(h.Sessions))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	AuthRoutes(r, h)
	AccountRoutes(r, h)
	AdminRoutes(r, h)
	WebSocketRoutes(r, h)
	BrowseRoutes(r, h)
	VisitRoutes(r, h)
	APIRoutes(r, h, opts)

	return r
}
