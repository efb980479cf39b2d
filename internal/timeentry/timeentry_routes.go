package timeentry

import (
	"go-timeclock/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	entries := r.Group("/time-entries")
	entries.Use(middleware.AuthMiddleware())
	{
		entries.POST("/clock-in",
			middleware.RBACAuthorize(rbacService, "time_entry", "clock"),
			middleware.Idempotency(rdb),
			handler.ClockIn,
		)
		entries.POST("/clock-out",
			middleware.RBACAuthorize(rbacService, "time_entry", "clock"),
			middleware.Idempotency(rdb),
			handler.ClockOut,
		)
		entries.GET("", middleware.RBACAuthorize(rbacService, "time_entry", "read"), handler.GetAll)
		entries.GET("/export", middleware.RBACAuthorize(rbacService, "time_entry", "export"), handler.Export)
		entries.GET("/:id", middleware.RBACAuthorize(rbacService, "time_entry", "read"), handler.GetById)
		entries.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "time_entry", "submit"), handler.Submit)
		entries.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "time_entry", "approve"), handler.Approve)
	}
}
