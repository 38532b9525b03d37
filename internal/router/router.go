package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meditrack/meditrack-backend/config"
	"github.com/meditrack/meditrack-backend/internal/app/controller"
	"github.com/meditrack/meditrack-backend/internal/app/model"
	apperrors "github.com/meditrack/meditrack-backend/internal/errors"
	"github.com/meditrack/meditrack-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

// NewRouter wires the route table. uploadController may be nil, in which
// case the upload routes are not mounted.
func NewRouter(
	authController *controller.AuthController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(recoverPanic))
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  "healthy",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authController.Signup)
			auth.POST("/login", r.authController.Login)
			auth.POST("/forgotpassword", r.authController.ForgotPassword)
			auth.PUT("/resetpassword", r.authController.ResetPassword)

			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.GET("/doctors", r.authMiddleware.Authenticate(), r.authController.GetAllDoctors)
			auth.GET("/my-doctors",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RolePatient),
				r.authController.GetMyDoctors,
			)
			auth.GET("/patients",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleDoctor),
				r.authController.GetPatients,
			)
		}

		if r.uploadController != nil {
			uploads := api.Group("/uploads", r.authMiddleware.Authenticate())
			{
				uploads.POST("/presign", r.uploadController.Presign)
			}
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			// Wildcard cannot be combined with credentials.
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}

// recoverPanic answers a panicking handler with the usual error envelope.
func recoverPanic(c *gin.Context, recovered any) {
	apperrors.InternalError(c, "", fmt.Errorf("panic: %v", recovered))
}
