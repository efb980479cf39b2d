package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StdoutAuditLogger is the default sink when no Mongo URI is configured;
// audit events land in the process log stream.
type StdoutAuditLogger struct{}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	zap.L().Named("audit").Info(entry.Action,
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
