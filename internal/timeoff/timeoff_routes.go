package timeoff

import (
	"go-timeclock/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	requests := r.Group("/time-off")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", middleware.RBACAuthorize(rbacService, "time_off", "create"), handler.Create)
		requests.GET("", middleware.RBACAuthorize(rbacService, "time_off", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "time_off", "read"), handler.GetById)
		requests.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "time_off", "decide"), handler.Decide)
	}
}
