package shiftswap

import (
	"go-timeclock/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	swaps := r.Group("/shift-swaps")
	swaps.Use(middleware.AuthMiddleware())
	{
		swaps.POST("", middleware.RBACAuthorize(rbacService, "shift_swap", "create"), handler.Create)
		swaps.GET("", middleware.RBACAuthorize(rbacService, "shift_swap", "read"), handler.GetAll)
		swaps.GET("/:id", middleware.RBACAuthorize(rbacService, "shift_swap", "read"), handler.GetById)
		swaps.POST("/:id/respond", middleware.RBACAuthorize(rbacService, "shift_swap", "respond"), handler.Respond)
		swaps.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "shift_swap", "decide"), handler.ManagerDecide)
		swaps.POST("/:id/execute", middleware.RBACAuthorize(rbacService, "shift_swap", "execute"), handler.Execute)
		swaps.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "shift_swap", "create"), handler.Cancel)
	}
}
