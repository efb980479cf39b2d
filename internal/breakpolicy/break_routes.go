package breakpolicy

import (
	"go-timeclock/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	breaks := r.Group("/breaks")
	breaks.Use(middleware.AuthMiddleware())
	{
		breaks.POST("/start", middleware.RBACAuthorize(rbacService, "break", "use"), handler.Start)
		breaks.POST("/end", middleware.RBACAuthorize(rbacService, "break", "use"), handler.End)
		breaks.GET("/active", middleware.RBACAuthorize(rbacService, "break", "read"), handler.GetActive)
	}

	violations := r.Group("/break-violations")
	violations.Use(middleware.AuthMiddleware())
	{
		violations.GET("", middleware.RBACAuthorize(rbacService, "break_violation", "read"), handler.GetViolations)
		violations.POST("/:id/review", middleware.RBACAuthorize(rbacService, "break_violation", "review"), handler.Review)
	}
}
