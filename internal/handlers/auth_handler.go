package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"teamfinder/internal/middleware"
	"teamfinder/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	userService services.UserService
	jwtSecret   []byte
	sessionTTL  time.Duration
}

func NewAuthHandler(
	authService *services.AuthService,
	userService services.UserService,
	jwtSecret []byte,
	sessionTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
	}
}

type loginRequest struct {
	Code string `json:"code"`
}

// Login exchanges a bot-issued one-time code for a session token.
// Invalid and expired codes get the same answer; only throttling is
// surfaced distinctly so the client can show a backoff message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Auth code is required"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	user, session, err := h.authService.Login(c.ClientIP(), code)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed attempts. Please try again later."})
		return
	case errors.Is(err, services.ErrInvalidCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired auth code"})
		return
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	default:
		log.Printf("[auth][login][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	token, err := middleware.NewSessionToken(h.jwtSecret, session.UserID, h.sessionTTL)
	if err != nil {
		log.Printf("[auth][login][err] sign session userID=%d: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	user, err := h.userService.GetByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("[auth][me][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout exists for client symmetry: sessions are stateless JWTs, the
// client just drops its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
