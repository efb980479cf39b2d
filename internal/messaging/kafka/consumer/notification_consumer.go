package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-timeclock/internal/events"
	"go-timeclock/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeBreakViolations(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.break_violation")
	log.Info("break violation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("break violation consumer stopped")
				return
			}
			log.Error("fetch break violation message failed", zap.Error(err))
			continue
		}

		var event events.BreakViolationRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode break violation event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject := fmt.Sprintf("Break violation recorded for employee %s", event.EmployeeID)
		body := fmt.Sprintf(
			"Violation %s (%s): scheduled %d min, actual %d min, over by %d min.",
			event.ViolationID,
			event.ViolationType,
			event.ScheduledMinutes,
			event.ActualMinutes,
			event.DifferenceMinutes,
		)
		if err := mailer.Send(subject, body); err != nil {
			log.Error("notify break violation failed",
				zap.String("violation_id", event.ViolationID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit break violation message failed", zap.Error(err))
			continue
		}

		log.Info("break violation notification sent",
			zap.String("violation_id", event.ViolationID),
			zap.String("company_id", event.CompanyID),
		)
	}
}

func ConsumeShiftSwapLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.shift_swap")
	log.Info("shift swap consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shift swap consumer stopped")
				return
			}
			log.Error("fetch shift swap message failed", zap.Error(err))
			continue
		}

		var event events.ShiftSwapCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode shift swap event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject := fmt.Sprintf("Shift %s completed", event.SwapType)
		body := fmt.Sprintf(
			"Swap %s executed: shift moved from employee %s to employee %s.",
			event.SwapID,
			event.RequesterID,
			event.TargetEmployeeID,
		)
		if err := mailer.Send(subject, body); err != nil {
			log.Error("notify shift swap failed",
				zap.String("swap_id", event.SwapID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit shift swap message failed", zap.Error(err))
			continue
		}

		log.Info("shift swap notification sent",
			zap.String("swap_id", event.SwapID),
			zap.String("company_id", event.CompanyID),
		)
	}
}

func ConsumeTimeOffLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.time_off")
	log.Info("time off consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("time off consumer stopped")
				return
			}
			log.Error("fetch time off message failed", zap.Error(err))
			continue
		}

		var event events.TimeOffDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode time off event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject := fmt.Sprintf("Time off request %s", event.Status)
		body := fmt.Sprintf(
			"Request %s for employee %s is now %s.",
			event.RequestID,
			event.EmployeeID,
			event.Status,
		)
		if err := mailer.Send(subject, body); err != nil {
			log.Error("notify time off failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit time off message failed", zap.Error(err))
			continue
		}

		log.Info("time off notification sent",
			zap.String("request_id", event.RequestID),
			zap.String("company_id", event.CompanyID),
		)
	}
}
