package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/teamcollar/stem-assessment/internal/config"
	"github.com/teamcollar/stem-assessment/internal/handler"
	"github.com/teamcollar/stem-assessment/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Assessment *handler.AssessmentHandler
	ProctorWS  *handler.ProctorWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Assessment Group ───────────────────────────────────────────
	api := router.Group("/api/v1/assessment")
	{
		api.GET("/state", handlers.Assessment.GetState)
		api.GET("/paper", handlers.Assessment.GetPaper)
		api.POST("/start", handlers.Assessment.Start)
		api.POST("/navigate", handlers.Assessment.Navigate)
		api.POST("/questions/:question_id/answer", handlers.Assessment.Answer)
		api.POST("/questions/:question_id/mark", handlers.Assessment.Mark)
		api.POST("/questions/:question_id/unmark", handlers.Assessment.Unmark)
		api.POST("/section/submit", handlers.Assessment.SubmitSection)
		api.POST("/submit", handlers.Assessment.SubmitTest)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/assessment/stream", handlers.ProctorWS.Stream)
	}

	return router
}
