package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/config"
)

// Sender delivers outbound mail. Delivery is best effort; callers never fail a
// request on a send error.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSender picks an implementation from configuration. Anything other than
// "smtp" logs instead of sending, which is what development environments want.
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	switch cfg.Sender {
	case "smtp":
		return &smtpSender{host: cfg.SMTPHost, port: cfg.SMTPPort, from: cfg.From}
	default:
		return &logSender{logger: logger}
	}
}

type logSender struct {
	logger *zap.Logger
}

func (s *logSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("mail (log sender)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

type smtpSender struct {
	host string
	port int
	from string
}

func (s *smtpSender) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	msg := "Subject: " + subject + "\r\n\r\n" + body + "\r\n"
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
