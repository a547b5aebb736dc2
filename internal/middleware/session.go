package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"geocache/internal/auth"
)

const userIDKey = "user_id"

// Session reads the session token from the "user" cookie or a Bearer header
// and stores the user id in the context. It never rejects a request.
func Session(signer *auth.SessionSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.SessionCookie)
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token != "" {
			if userID, err := signer.Parse(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// RequireSession redirects anonymous requests to the login page, remembering
// where they were going.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.Redirect(http.StatusFound, "/login?returnUrl="+url.QueryEscape(c.Request.RequestURI))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the signed-in user, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}
