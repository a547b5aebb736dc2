package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/cache"
	"geocache/internal/store"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// cache keys of everything the JSON API serves from redis
const (
	keyUsersCount     = "count:users"
	keyRoutesCount    = "count:routes"
	keyWaypointsCount = "count:waypoints"
	keyVisitsCount    = "count:visits"
	keyBoardWaypoints = "leaderboard:waypoints"
	keyBoardUsers     = "leaderboard:users"
	keyBoardRoutes    = "leaderboard:routes"
)

var statsKeys = []string{
	keyUsersCount, keyRoutesCount, keyWaypointsCount, keyVisitsCount,
}

func (h *Handler) APIIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is working!"})
}

func (h *Handler) APIUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		serverError(c, err, "APIUsers: could not list users")
		return
	}
	type apiUser struct {
		ID       uint    `json:"id"`
		Username string  `json:"username"`
		Email    string  `json:"email"`
		GoogleID *string `json:"googleId"`
	}
	out := make([]apiUser, 0, len(users))
	for _, u := range users {
		out = append(out, apiUser{ID: u.ID, Username: u.Username, Email: u.Email, GoogleID: u.GoogleID})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) APIDeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if err := h.deleteUser(c, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		serverError(c, err, "APIDeleteUser: could not delete user")
		return
	}
	logrus.WithField("user_id", id).Info("User deleted through API")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User with ID %d deleted successfully", id)})
}

func (h *Handler) APIRoutes(c *gin.Context) {
	routes, err := h.Store.ListRoutes(c.Request.Context())
	if err != nil {
		serverError(c, err, "APIRoutes: could not list routes")
		return
	}
	c.JSON(http.StatusOK, toRouteResponses(routes))
}

func (h *Handler) countHandler(key string, count func(context.Context) (int64, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := cache.Remember(c.Request.Context(), h.Cache, key, count)
		if err != nil {
			serverError(c, err, "could not count "+key)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

func (h *Handler) APIUsersCount() gin.HandlerFunc {
	return h.countHandler(keyUsersCount, h.Store.CountUsers)
}

func (h *Handler) APIRoutesCount() gin.HandlerFunc {
	return h.countHandler(keyRoutesCount, h.Store.CountRoutes)
}

func (h *Handler) APIWaypointsCount() gin.HandlerFunc {
	return h.countHandler(keyWaypointsCount, h.Store.CountWaypoints)
}

func (h *Handler) APIVisitsCount() gin.HandlerFunc {
	return h.countHandler(keyVisitsCount, h.Store.CountVisits)
}

// leaderboardLimit reads ?limit=, clamped to [1, maxLeaderboardSize].
func leaderboardLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultLeaderboardSize
	}
	if n > maxLeaderboardSize {
		return maxLeaderboardSize
	}
	return n
}

// leaderboard serves a ranking through the cache. T is the row type.
func leaderboard[T any](h *Handler, key string, load func(context.Context, int) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := leaderboardLimit(c)
		rows, err := cache.Remember(c.Request.Context(), h.Cache, fmt.Sprintf("%s:%d", key, limit),
			func(ctx context.Context) ([]T, error) { return load(ctx, limit) })
		if err != nil {
			serverError(c, err, "could not load "+key)
			return
		}
		if rows == nil {
			rows = []T{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

func (h *Handler) APILeaderboardWaypoints() gin.HandlerFunc {
	return leaderboard(h, keyBoardWaypoints, h.Store.MostVisitedWaypoints)
}

func (h *Handler) APILeaderboardUsers() gin.HandlerFunc {
	return leaderboard(h, keyBoardUsers, h.Store.MostActiveUsers)
}

func (h *Handler) APILeaderboardRoutes() gin.HandlerFunc {
	return leaderboard(h, keyBoardRoutes, h.Store.MostCompletedRoutes)
}
