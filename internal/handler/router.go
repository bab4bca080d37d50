package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Routes bundles the handlers mounted by NewRouter
type Routes struct {
	Chat           *ChatHandler
	Search         *SearchHandler
	Health         *HealthHandler
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(routes Routes, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(routes.AllowedOrigins) == 0 || slices.Contains(routes.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = routes.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", routes.Health.Health)
	router.GET("/version", routes.Health.Version)

	router.POST("/api/chat", routes.Chat.Stream)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/properties/search", routes.Search.Search)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	return router
}
