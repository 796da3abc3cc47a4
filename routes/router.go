package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/askeland/bildereise/config"
	"github.com/askeland/bildereise/controllers"
	"github.com/askeland/bildereise/middleware"
	"github.com/askeland/bildereise/services/vision"
	"github.com/askeland/bildereise/storage"
	"github.com/askeland/bildereise/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(store storage.Store, analyzer vision.Analyzer) (*gin.Engine, error) {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.Ginzap(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	authController, err := controllers.NewAuthController(store, cfg.UploadsDir)
	if err != nil {
		return nil, err
	}
	galleryController, err := controllers.NewGalleryController(store, analyzer, cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	// Working images and thumbnails referenced by gallery records.
	r.Static("/uploads", cfg.UploadsDir)

	api := r.Group("/api")

	api.GET("/health", func(ctx *gin.Context) {
		utils.JSON(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)

	api.POST("/logout", middleware.AuthRequired(), authController.Logout)

	userGroup := api.Group("/user")
	userGroup.Use(middleware.AuthRequired())
	userGroup.GET("", authController.Me)
	userGroup.PUT("/profile", authController.UpdateProfile)
	userGroup.POST("/profile-image", authController.UploadProfileImage)
	userGroup.PUT("/password", authController.UpdatePassword)
	userGroup.PUT("/theme", authController.UpdateTheme)

	api.GET("/gallery", galleryController.List)
	api.GET("/gallery/:id", galleryController.Get)
	api.POST("/gallery/upload", middleware.AuthRequired(), galleryController.Upload)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r, nil
}
