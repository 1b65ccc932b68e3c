package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamenight/planner-api/common"
	"github.com/gamenight/planner-api/common/graceful"
)

// Status reports process health; load balancers poll it while draining.
func Status(c *gin.Context) {
	if graceful.IsDraining() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "draining",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "",
		"version":    common.Version,
		"start_time": common.StartTime,
	})
}

// ListModels returns the model names clients may request.
func (r *Relay) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models": r.registry.Names(),
	})
}
