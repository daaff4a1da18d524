package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"reviewhub/internal/config"

	"golang.org/x/time/rate"
)

// Sender delivers confirmation codes out-of-band.
type Sender interface {
	SendConfirmationCode(ctx context.Context, to, code string) error
}

// SMTPSender sends mail through a plain SMTP relay. Outbound volume is
// throttled so a burst of registrations cannot flood the relay.
type SMTPSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
	limiter  *rate.Limiter
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		limiter:  rate.NewLimiter(rate.Limit(1), 5), // 1 msg/sec, burst of 5
	}
}

func (s *SMTPSender) SendConfirmationCode(ctx context.Context, to, code string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email throttle: %w", err)
	}

	subject := "ReviewHub registration"
	body := fmt.Sprintf("Your confirmation code: %s\n\nSubmit it together with your email to receive an access token.\nIf you did not register on ReviewHub, ignore this message.\n", code)

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", s.from, to, subject, body)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	addr := net.JoinHostPort(s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}
