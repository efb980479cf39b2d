package app

import (
	"database/sql"

	"go-timeclock/internal/auth"
	"go-timeclock/internal/breakpolicy"
	"go-timeclock/internal/directory"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/punch"
	"go-timeclock/internal/rbac"
	"go-timeclock/internal/shared/lock"
	"go-timeclock/internal/shiftswap"
	"go-timeclock/internal/timeentry"
	"go-timeclock/internal/timeoff"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	directoryRepo := directory.NewRepository(gormDB)
	punchRepo := punch.NewRepository(gormDB)
	timeEntryRepo := timeentry.NewRepository(gormDB)
	violationRepo := breakpolicy.NewViolationRepository(gormDB)
	shiftRepo := shiftswap.NewShiftRepository(gormDB)
	shiftSwapRepo := shiftswap.NewRepository(gormDB)
	timeOffRepo := timeoff.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	lockRepo := lock.NewRepository()

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo)
	breakService := breakpolicy.NewService(db, punchRepo, timeEntryRepo, violationRepo, outboxRepo, lockRepo)
	// The break engine closes dangling breaks during clock-out.
	timeEntryService := timeentry.NewService(db, timeEntryRepo, punchRepo, lockRepo, breakService)
	shiftSwapService := shiftswap.NewService(db, shiftSwapRepo, shiftRepo, directoryRepo, outboxRepo)
	timeOffService := timeoff.NewService(timeOffRepo, directoryRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	punchHandler := punch.NewHandler(punchRepo)
	timeEntryHandler := timeentry.NewHandler(timeEntryService)
	breakHandler := breakpolicy.NewHandlerWithRedis(breakService, rdb)
	shiftSwapHandler := shiftswap.NewHandler(shiftSwapService)
	timeOffHandler := timeoff.NewHandler(timeOffService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		punch.RegisterRoutes(api, punchHandler, rbacService)
		timeentry.RegisterRoutes(api, timeEntryHandler, rbacService, rdb)
		breakpolicy.RegisterRoutes(api, breakHandler, rbacService)
		shiftswap.RegisterRoutes(api, shiftSwapHandler, rbacService)
		timeoff.RegisterRoutes(api, timeOffHandler, rbacService)
	}

	return nil
}
