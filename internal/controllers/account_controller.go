package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/middleware"
	"geocache/internal/store"
)

func (h *Handler) Account(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.ClearSessionCookie(c)
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		serverError(c, err, "Account: could not load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(*user)})
}

func (h *Handler) Achievements(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	achievements, err := h.Store.UserAchievements(c.Request.Context(), userID)
	if err != nil {
		serverError(c, err, "Achievements: could not list achievements")
		return
	}
	type item struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		EarnedAt    string `json:"earned_at"`
	}
	out := make([]item, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, item{
			Name:        a.Achievement.Name,
			Description: a.Achievement.Description,
			EarnedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// DeleteAccount removes the signed-in user and everything they own, then
// ends the session.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.deleteUser(c, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.ClearSessionCookie(c)
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		serverError(c, err, "DeleteAccount: could not delete user")
		return
	}
	middleware.ClearSessionCookie(c)
	logrus.WithField("user_id", userID).Info("Account deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// deleteUser cascades the user away and cleans up their route thumbnails.
func (h *Handler) deleteUser(c *gin.Context, userID uint) error {
	ctx := c.Request.Context()
	routes, err := h.Store.ListRoutesByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	for _, r := range routes {
		h.Thumbnails.Remove(r.Thumbnail)
	}
	h.Cache.Forget(ctx, statsKeys...)
	return nil
}
