package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"teamfinder/internal/handlers"
	"teamfinder/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	messageHandler *handlers.MessageHandler,
	publicDir string,
) *gin.Engine {
	api := r.Group("/api")

	// ---- public
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// ---- protected
	authed := api.Group("", middleware.AuthMiddleware(jwtSecret))

	authed.GET("/auth/me", authHandler.Me)

	profile := authed.Group("/profile")
	{
		profile.GET("", profileHandler.GetProfile)
		profile.PUT("", profileHandler.UpdateProfile)
		profile.GET("/users", profileHandler.ListUsers)
		profile.GET("/:userId", profileHandler.GetUserProfile)
	}

	messages := authed.Group("/messages")
	{
		messages.GET("/conversations", messageHandler.ListConversations)
		messages.GET("/unread/count", messageHandler.UnreadCount)
		messages.GET("/:userId", messageHandler.OpenConversation)
		messages.POST("", messageHandler.SendMessage)
	}

	// SPA: статика из public/, всё остальное — index.html
	if publicDir != "" {
		if st, err := os.Stat(publicDir); err == nil && st.IsDir() {
			r.NoRoute(func(c *gin.Context) {
				if strings.HasPrefix(c.Request.URL.Path, "/api/") {
					c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
					return
				}
				path := filepath.Join(publicDir, filepath.Clean("/"+c.Request.URL.Path))
				if st, err := os.Stat(path); err == nil && !st.IsDir() {
					c.File(path)
					return
				}
				c.File(filepath.Join(publicDir, "index.html"))
			})
		}
	}

	return r
}
