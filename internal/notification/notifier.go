package notification

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Notifier delivers one message to one recipient. The dispatcher decides
// who gets notified and with what; implementations only carry the send.
type Notifier interface {
	Send(to, subject, body string) error
}

// SMTPNotifier sends plain-text mail through a relay.
type SMTPNotifier struct {
	host string
	port string
	from string
}

func NewSMTPNotifier(host, port, from string) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from}
}

func (s *SMTPNotifier) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

// LogNotifier writes the notification to the log instead of sending it,
// for local runs without an SMTP relay.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(to, subject, body string) error {
	l.logger.Info("notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
