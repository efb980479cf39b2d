package main

import (
	"os"
	"time"

	"go-timeclock/internal/app"
	"go-timeclock/internal/bootstrap"
	"go-timeclock/internal/shared/apperror"
	"go-timeclock/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	if err := app.BuildApp(r); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := buildAuditLogger(logger)
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		auditLogger,
	)
}

func buildAuditLogger(logger *zap.Logger) bootstrap.AuditLogger {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return bootstrap.NewStdoutAuditLogger()
	}

	client, err := connection.ConnectMongoWithRetry(mongoURI, 3)
	if err != nil {
		logger.Warn("mongo unavailable, audit events go to stdout", zap.Error(err))
		return bootstrap.NewStdoutAuditLogger()
	}
	return bootstrap.NewMongoAuditLogger(client, "timeclock", "audit_events")
}
