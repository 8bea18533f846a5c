package application

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/k-obata-3/leave-connect-api/internal/middleware"
)

// RegisterRoutes mounts the workflow endpoints. Mutating endpoints carry
// the redis idempotency guard.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	applications := rg.Group("/applications")
	{
		applications.GET("", handler.List)
		applications.GET("/month", handler.ListMonth)
		applications.GET("/:id", handler.GetDetail)
		applications.POST("", middleware.RateLimitByUser(2, 5), middleware.Idempotency(rdb), handler.Submit)
		applications.DELETE("/:id", middleware.RateLimitByUser(2, 5), handler.Delete)
		applications.POST("/:id/cancel", middleware.RateLimitByUser(2, 5), middleware.Idempotency(rdb), middleware.AdminOnly(), handler.Cancel)
	}

	approvals := rg.Group("/approvals")
	{
		approvals.GET("", handler.ListApprovals)
		approvals.POST("", middleware.RateLimitByUser(2, 5), middleware.Idempotency(rdb), handler.Approve)
	}

	rg.GET("/notifications", handler.Notifications)
}
