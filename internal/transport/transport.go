package transport

import (
	"github.com/ds124wfegd/ocrsynth/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(h *GeneratorHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	router.POST("/generate", h.Generate)
	router.POST("/replay", h.Replay)

	sample := router.Group("/sample")
	{
		sample.GET("/:id", h.GetSample)
		sample.GET("/:id/image", h.GetSampleImage)
		sample.DELETE("/:id", h.DeleteSample)
	}

	router.GET("/resources/health", h.ResourceHealth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ocrsynth",
		})
	})
	return router
}
