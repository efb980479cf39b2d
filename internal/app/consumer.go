package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka/consumer"
	"go-timeclock/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	mailer := buildMailer(logger)

	newReader := func(topic string) *kafkago.Reader {
		return kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        []string{kafkaBroker},
			Topic:          topic,
			GroupID:        "go-timeclock-notifications",
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		})
	}

	violationReader := newReader(events.BreakViolationTopic)
	defer violationReader.Close()
	swapReader := newReader(events.ShiftSwapLifecycleTopic)
	defer swapReader.Close()
	timeOffReader := newReader(events.TimeOffLifecycleTopic)
	defer timeOffReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeBreakViolations(ctx, violationReader, mailer, logger)
	go consumer.ConsumeShiftSwapLifecycle(ctx, swapReader, mailer, logger)
	go consumer.ConsumeTimeOffLifecycle(ctx, timeOffReader, mailer, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}

func buildMailer(logger *zap.Logger) notification.Mailer {
	host := os.Getenv("MAIL_HOST")
	if host == "" {
		return notification.NopMailer{Logger: logger}
	}

	port, err := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if err != nil {
		port = 587
	}

	return notification.NewSMTPMailer(
		host,
		port,
		os.Getenv("MAIL_USER"),
		os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"),
		os.Getenv("MAIL_HR_INBOX"),
	)
}
