package notification

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers workforce notifications to the HR mailbox over SMTP.
type Mailer interface {
	Send(subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
	logger *zap.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from, to string, logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.mailer")
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		to:     to,
		logger: l,
	}
}

func (m *smtpMailer) Send(subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("send mail failed", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to send notification mail: %w", err)
	}
	m.logger.Debug("mail sent", zap.String("subject", subject))
	return nil
}

// NopMailer is used when SMTP is not configured; notifications are logged
// and dropped.
type NopMailer struct {
	Logger *zap.Logger
}

func (m NopMailer) Send(subject, body string) error {
	l := m.Logger
	if l == nil {
		l = zap.L()
	}
	l.Named("notification.mailer").Info("mail delivery disabled, dropping notification",
		zap.String("subject", subject),
	)
	return nil
}
