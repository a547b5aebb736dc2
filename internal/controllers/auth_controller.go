package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"geocache/internal/auth"
	"geocache/internal/middleware"
	"geocache/internal/models"
	"geocache/internal/store"
)

const maxUsernameSuffix = 100

// Register creates a local account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var input auth.Registration
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	echo := func(status int, msg string) {
		c.JSON(status, gin.H{"error": msg, "email": input.Email, "username": input.Username})
	}

	if err := auth.ValidateRegistration(&input); err != nil {
		echo(http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		serverError(c, err, "Register: could not hash password")
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), store.NewUser{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: &hash,
	})
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		echo(http.StatusConflict, "Email already in use!")
		return
	case errors.Is(err, store.ErrUsernameTaken):
		echo(http.StatusConflict, "Username already in use!")
		return
	case err != nil:
		serverError(c, err, "Register: could not create user")
		return
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	h.Cache.Forget(c.Request.Context(), statsKeys...)
	h.startSession(c, http.StatusCreated, user)
}

// Login checks email and password and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var body struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		ReturnURL string `json:"returnUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), strings.TrimSpace(body.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email or password incorrect!", "email": body.Email})
			return
		}
		serverError(c, err, "Login: could not load user")
		return
	}
	if !user.HasPassword() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in!", "email": body.Email})
		return
	}
	if !auth.CheckPassword(*user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email or password incorrect!", "email": body.Email})
		return
	}

	token, err := h.Sessions.Sign(user.ID)
	if err != nil {
		serverError(c, err, "Login: could not sign session")
		return
	}
	middleware.SetSessionCookie(c, token, h.Sessions.TTL())
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user":     toUserResponse(*user),
		"redirect": safeReturnURL(body.ReturnURL),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GoogleLogin redirects to Google's consent page.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	state := auth.NewState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.StateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow and signs the matching account in,
// linking or creating it as needed.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not configured"})
		return
	}

	expected, _ := c.Cookie(auth.StateCookie)
	c.SetCookie(auth.StateCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	identity, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		logrus.WithError(err).Warn("GoogleCallback: exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed. Please try again."})
		return
	}
	if identity.Subject == "" || identity.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google did not share an email address"})
		return
	}

	user, err := h.googleUser(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use!"})
			return
		}
		serverError(c, err, "GoogleCallback: could not resolve user")
		return
	}

	token, err := h.Sessions.Sign(user.ID)
	if err != nil {
		serverError(c, err, "GoogleCallback: could not sign session")
		return
	}
	middleware.SetSessionCookie(c, token, h.Sessions.TTL())
	c.Redirect(http.StatusFound, "/")
}

// googleUser finds the account for a Google identity: by Google id, then by
// verified email (linking it), and otherwise creates a Google-only account.
func (h *Handler) googleUser(ctx context.Context, id auth.GoogleIdentity) (*models.User, error) {
	user, err := h.Store.GetUserByGoogleID(ctx, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	user, err = h.Store.GetUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if !id.EmailVerified || user.GoogleID != nil {
			return nil, store.ErrEmailTaken
		}
		if err := h.Store.LinkGoogleID(ctx, user.ID, id.Subject); err != nil {
			return nil, err
		}
		user.GoogleID = &id.Subject
		logrus.WithField("user_id", user.ID).Info("Linked Google account")
		return user, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, err
	}

	username, err := h.freeUsername(ctx, auth.UsernameFromEmail(id.Email))
	if err != nil {
		return nil, err
	}
	user, err = h.Store.CreateUser(ctx, store.NewUser{Email: id.Email, Username: username, GoogleID: &id.Subject})
	if err != nil {
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("User registered with Google")
	h.Cache.Forget(ctx, statsKeys...)
	return user, nil
}

func (h *Handler) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameSuffix; i++ {
		taken, err := h.Store.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", store.ErrUsernameTaken
}

func (h *Handler) startSession(c *gin.Context, status int, user *models.User) {
	token, err := h.Sessions.Sign(user.ID)
	if err != nil {
		serverError(c, err, "could not sign session")
		return
	}
	middleware.SetSessionCookie(c, token, h.Sessions.TTL())
	c.JSON(status, gin.H{"token": token, "user": toUserResponse(*user)})
}

// safeReturnURL only allows local paths so login cannot redirect off-site.
func safeReturnURL(u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return u
	}
	return "/"
}
