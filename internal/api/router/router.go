package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CarrotView/carrotview-server/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "carrotview-api-service",
		})
	})

	// Initialize job handler
	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Create a job and start the prompt stage
			jobs.POST("", jobHandler.CreateJob)

			// GET /api/v1/jobs/:job_id - Get job details
			jobs.GET("/:job_id", jobHandler.GetJob)

			// POST /api/v1/jobs/:job_id/video - Approve prompts, start video generation
			jobs.POST("/:job_id/video", jobHandler.GenerateVideo)

			// POST /api/v1/jobs/:job_id/image - Start image generation
			jobs.POST("/:job_id/image", jobHandler.GenerateImage)
		}
	}

	return r
}
