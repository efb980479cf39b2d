package bootstrap

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoAuditLogger persists audit events to a capped-style collection for
// retention beyond process logs. Failures fall back to the process log; an
// audit write must never take the service down.
type MongoAuditLogger struct {
	collection *mongo.Collection
}

func NewMongoAuditLogger(client *mongo.Client, database, collection string) *MongoAuditLogger {
	return &MongoAuditLogger{
		collection: client.Database(database).Collection(collection),
	}
}

func (l *MongoAuditLogger) Log(ctx context.Context, entry AuditLog) {
	doc := map[string]any{
		"timestamp": time.Now().UTC(),
		"action":    entry.Action,
		"message":   entry.Message,
		"meta":      entry.Meta,
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := l.collection.InsertOne(writeCtx, doc); err != nil {
		zap.L().Named("audit").Warn("mongo audit write failed, falling back to stdout",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		NewStdoutAuditLogger().Log(ctx, entry)
	}
}
