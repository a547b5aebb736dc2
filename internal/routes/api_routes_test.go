package routes

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geocache/internal/store"
)

func apiPath(path string) string {
	return "/api" + path + "?apiKey=" + testAPIKey
}

func TestAPIRequiresKey(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/users", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/users?apiKey=wrong", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, apiPath("/"), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"API is working!"}`, w.Body.String())
}

func TestAPIUsersAndCounts(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user("owner")
	player := e.user("player")
	route := e.createRoute(owner.ID, "Loop", waypoint(0, 0, 1, 1, "A"), waypoint(0, 1, 2, 2, "B"))
	require.NoError(t, e.store.JoinRoute(context.Background(), player.ID, route.ID))
	token, err := e.store.EnsureVisitToken(context.Background(), route.Waypoints[0].ID)
	require.NoError(t, err)
	_, err = e.store.RecordVisit(context.Background(), player.ID, token)
	require.NoError(t, err)

	w := e.do(http.MethodGet, apiPath("/users"), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	decode(t, w, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "owner", users[0]["username"])
	assert.Contains(t, users[0], "googleId")
	assert.NotContains(t, users[0], "password")

	for path, want := range map[string]float64{
		"/users/count": 2, "/routes/count": 1, "/waypoints/count": 2, "/visits/count": 1,
	} {
		w := e.do(http.MethodGet, apiPath(path), nil, 0)
		require.Equal(t, http.StatusOK, w.Code, path)
		var body map[string]float64
		decode(t, w, &body)
		assert.Equal(t, want, body["count"], path)
	}

	w = e.do(http.MethodGet, apiPath("/leaderboard/users"), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	var board []store.UserRank
	decode(t, w, &board)
	require.Len(t, board, 1)
	assert.Equal(t, player.ID, board[0].UserID)

	w = e.do(http.MethodGet, apiPath("/leaderboard/routes"), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = e.do(http.MethodGet, apiPath("/leaderboard/waypoints")+"&limit=1", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	var wps []store.WaypointRank
	decode(t, w, &wps)
	require.Len(t, wps, 1)
	assert.Equal(t, "A", wps[0].Name)

	w = e.do(http.MethodGet, apiPath("/routes"), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	var routes []map[string]interface{}
	decode(t, w, &routes)
	assert.Len(t, routes, 1)
}

func TestAPIDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user("owner")
	e.createRoute(owner.ID, "Loop", waypoint(0, 0, 1, 1, "A"))

	w := e.do(http.MethodDelete, apiPath("/users/abc"), nil, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, apiPath(fmt.Sprintf("/users/%d", owner.ID)), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"message":"User with ID %d deleted successfully"}`, owner.ID), w.Body.String())

	w = e.do(http.MethodDelete, apiPath(fmt.Sprintf("/users/%d", owner.ID)), nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)

	n, err := e.store.CountRoutes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAccount(t *testing.T) {
	e := newTestEnv(t)
	u := e.user("alice")
	e.createRoute(u.ID, "Loop", waypoint(0, 0, 1, 1, "A"))

	w := e.do(http.MethodGet, "/account", nil, u.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var account struct {
		Data map[string]interface{} `json:"data"`
	}
	decode(t, w, &account)
	assert.Equal(t, "alice@example.com", account.Data["email"])
	assert.Equal(t, false, account.Data["google_linked"])

	w = e.do(http.MethodGet, "/account/achievements", nil, u.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = e.do(http.MethodPost, "/account/delete", gin.H{}, u.ID)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/account", nil, u.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	n, err := e.store.CountRoutes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/health", nil, 0)
	assert.Equal(t, http.StatusOK, w.Code)
}
