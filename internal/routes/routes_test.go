package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"geocache/internal/auth"
	"geocache/internal/cache"
	"geocache/internal/config"
	"geocache/internal/controllers"
	"geocache/internal/hub"
	"geocache/internal/models"
	"geocache/internal/store"
	"geocache/internal/thumbnail"
	"geocache/internal/visitlink"
)

const (
	testAPIKey  = "test-key"
	testBaseURL = "http://geo.test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGoogle struct {
	identity auth.GoogleIdentity
	err      error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) Exchange(ctx context.Context, code string) (auth.GoogleIdentity, error) {
	return f.identity, f.err
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
	signer *auth.SessionSigner
	google *fakeGoogle
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, &cache.Cache{})
}

// newTestEnvWithCache builds the router around the given cache.
func newTestEnvWithCache(t *testing.T, c *cache.Cache) *testEnv {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { config.CloseDB(db) })

	visits := hub.NewVisitHub()
	t.Cleanup(visits.Close)

	env := &testEnv{
		t:      t,
		store:  store.New(db),
		signer: auth.NewSessionSigner("test-secret", time.Hour),
		google: &fakeGoogle{},
	}
	h := &controllers.Handler{
		Store:      env.store,
		Sessions:   env.signer,
		Google:     env.google,
		Links:      visitlink.NewBuilder(testBaseURL),
		Thumbnails: thumbnail.New("", t.TempDir(), "/assets/route-thumbnails"),
		Cache:      c,
		Hub:        visits,
	}
	env.router = SetupRouter(h, Options{APIKey: testAPIKey})
	return env
}

// memoryRedis answers GET, SET and DEL from a map so cache behaviour can be
// tested without a redis server.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (m *memoryRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		args := cmd.Args()
		switch cmd.Name() {
		case "get":
			c := cmd.(*redis.StringCmd)
			if v, ok := m.data[fmt.Sprint(args[1])]; ok {
				c.SetVal(v)
			} else {
				c.SetErr(redis.Nil)
			}
		case "set":
			switch v := args[2].(type) {
			case []byte:
				m.data[fmt.Sprint(args[1])] = string(v)
			default:
				m.data[fmt.Sprint(args[1])] = fmt.Sprint(v)
			}
			cmd.(*redis.StatusCmd).SetVal("OK")
		case "del":
			var n int64
			for _, k := range args[1:] {
				if _, ok := m.data[fmt.Sprint(k)]; ok {
					delete(m.data, fmt.Sprint(k))
					n++
				}
			}
			cmd.(*redis.IntCmd).SetVal(n)
		default:
			cmd.SetErr(fmt.Errorf("memoryRedis: unsupported command %q", cmd.Name()))
		}
		return cmd.Err()
	}
}

func newMemoryCache(t *testing.T) *cache.Cache {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "memory:0"})
	rdb.AddHook(&memoryRedis{data: map[string]string{}})
	c := cache.New(rdb, time.Minute)
	t.Cleanup(func() { c.Close() })
	return c
}

// do sends a request, signed in as userID when it is non-zero.
func (e *testEnv) do(method, path string, body interface{}, userID uint) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := e.signer.Sign(userID)
		require.NoError(e.t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) user(name string) *models.User {
	e.t.Helper()
	hash, err := auth.HashPassword("passw0rd")
	require.NoError(e.t, err)
	u, err := e.store.CreateUser(context.Background(), store.NewUser{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: &hash,
	})
	require.NoError(e.t, err)
	return u
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type routeEnvelope struct {
	Data controllers.RouteResponse `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

func waypoint(id uint, order int, lat, lng float64, name string) gin.H {
	wp := gin.H{"order_id": order, "lat": lat, "lng": lng, "name": name}
	if id != 0 {
		wp["id"] = id
	}
	return wp
}

func (e *testEnv) createRoute(ownerID uint, name string, waypoints ...gin.H) controllers.RouteResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/admin/routes/create", gin.H{"name": name, "waypoints": waypoints}, ownerID)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var env routeEnvelope
	decode(e.t, w, &env)
	return env.Data
}
