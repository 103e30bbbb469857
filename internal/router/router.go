package router

import (
	"time"

	"github.com/chatgptnotes/vivahgmc.com/internal/handlers"
	"github.com/chatgptnotes/vivahgmc.com/internal/middleware"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the route table. photoDir, when non-empty, is served at
// /photos so locally stored profile photos resolve publicly.
func NewRouter(photoDir string) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if photoDir != "" {
		r.Static("/photos", photoDir)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/connections/:connection_id", handlers.ThreadWebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		profiles := api.Group("/profiles", middleware.AuthMiddleware())
		{
			profiles.PUT("/me", handlers.SaveMyProfile)
			profiles.GET("/me", handlers.GetMyProfile)
			profiles.GET("", handlers.BrowseProfiles)
			profiles.GET("/:profile_id", handlers.GetProfile)
		}

		photos := api.Group("/photos", middleware.AuthMiddleware())
		{
			photos.GET("", handlers.ListMyPhotos)
			photos.POST("", handlers.UploadPhoto)
			photos.POST("/:photo_id/primary", handlers.SetPrimaryPhoto)
			photos.DELETE("/:photo_id", handlers.DeletePhoto)
		}

		connections := api.Group("/connections", middleware.AuthMiddleware())
		{
			connections.GET("", handlers.ListConnections)
			connections.POST("", handlers.RequestConnection)
			connections.GET("/requests", handlers.ListIncomingRequests)
			connections.POST("/:connection_id/respond", handlers.RespondToConnection)
			connections.GET("/:connection_id/messages", handlers.GetThread)
			connections.POST("/:connection_id/messages", handlers.SendMessage)
		}

		admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/dashboard", handlers.GetAdminDashboard)
			admin.GET("/profiles/pending", handlers.ListPendingProfiles)
			admin.POST("/profiles/:profile_id/approve", handlers.ApproveProfile)
			admin.POST("/profiles/:profile_id/reject", handlers.RejectProfile)
		}
	}

	return r
}
