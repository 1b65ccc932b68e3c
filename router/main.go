package router

import (
	"github.com/gin-gonic/gin"

	"github.com/gamenight/planner-api/middleware"
	"github.com/gamenight/planner-api/relay/controller"
)

// SetRouter registers all HTTP routes on the server.
func SetRouter(server *gin.Engine, relay *controller.Relay) {
	server.GET("/api/status", controller.Status)

	planEvent := relay.PlanEvent
	limiter := middleware.GlobalAPIRateLimit()

	apiRouter := server.Group("/api")
	apiRouter.Use(limiter)
	{
		apiRouter.POST("/plan-event", planEvent)
		apiRouter.GET("/models", relay.ListModels)
	}

	// Unprefixed alias kept for older clients.
	server.POST("/plan-event", limiter, planEvent)
}
