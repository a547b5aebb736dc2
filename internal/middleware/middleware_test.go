package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geocache/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(signer *auth.SessionSigner) *gin.Engine {
	r := gin.New()
	r.Use(Session(signer))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	r.GET("/private", RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return r
}

func TestSessionFromCookieAndBearer(t *testing.T) {
	signer := auth.NewSessionSigner("s3cret", time.Hour)
	r := newSessionRouter(signer)
	token, err := signer.Sign(9)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":9,"ok":true}`, w.Body.String())
}

func TestRequireSessionRedirects(t *testing.T) {
	r := newSessionRouter(auth.NewSessionSigner("s3cret", time.Hour))

	for _, cookie := range []string{"", "forged"} {
		req := httptest.NewRequest(http.MethodGet, "/private?tab=2", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?returnUrl=%2Fprivate%3Ftab%3D2", w.Header().Get("Location"))
	}
}

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		url  string
		want int
	}{
		{"valid", "k", "/api?apiKey=k", http.StatusOK},
		{"wrong", "k", "/api?apiKey=x", http.StatusUnauthorized},
		{"missing", "k", "/api", http.StatusUnauthorized},
		{"disabled", "", "/api?apiKey=", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/api", RequireAPIKey(tt.key), func(c *gin.Context) { c.Status(http.StatusOK) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAPICORS(t *testing.T) {
	r := gin.New()
	r.Use(APICORS([]string{"http://admin.example.com"}))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
