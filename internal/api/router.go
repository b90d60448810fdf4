// Package api exposes the scoring engine over HTTP.
package api

import (
	"net/http"
	"time"

	"forecastbonus/internal"

	"github.com/gin-gonic/gin"
)

// Handlers groups the route handlers mounted by NewRouter
type Handlers struct {
	Scoring *ScoringHandler
	Payouts *PayoutHandler
	// Stored enables the routes that read from the database
	Stored bool
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h Handlers, logger *internal.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored": h.Stored})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/scores/task", h.Scoring.TaskScore)
		v1.POST("/scores/experiment", h.Scoring.ExperimentScore)
		v1.POST("/scores/round", h.Scoring.RoundScore)
		v1.POST("/earnings", h.Scoring.Earnings)
		v1.POST("/accuracy", h.Scoring.Accuracy)
		v1.POST("/overview", h.Scoring.Overview)
		v1.POST("/payouts", h.Payouts.Batch)

		if h.Stored {
			v1.GET("/assignments/:id/payout", h.Payouts.ForAssignment)
			v1.GET("/assignments/:id/payout/latest", h.Payouts.Latest)
		} else {
			v1.GET("/assignments/:id/payout", storageUnavailable)
			v1.GET("/assignments/:id/payout/latest", storageUnavailable)
		}
	}

	return router
}

func storageUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assignment storage is not configured"})
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		for _, e := range c.Errors {
			logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		}
	}
}
