package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
)

// Mail is one outbound message
type Mail struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers mail
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// NewMailer picks SMTP when a host is configured and the log mailer otherwise
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{}
}

// SMTPMailer sends through an SMTP relay with go-mail
type SMTPMailer struct {
	dialer   *mail.Dialer
	from     string
	fromName string
	send     func(d *mail.Dialer, msgs ...*mail.Message) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second
	return &SMTPMailer{
		dialer:   dialer,
		from:     cfg.From,
		fromName: cfg.FromName,
		send: func(d *mail.Dialer, msgs ...*mail.Message) error {
			return d.DialAndSend(msgs...)
		},
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(s.dialer, s.buildMessage(m)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTPMailer) buildMessage(m Mail) *mail.Message {
	msg := mail.NewMessage()
	msg.SetAddressHeader("From", s.from, s.fromName)
	msg.SetAddressHeader("To", m.To, m.ToName)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}
	return msg
}

// LogMailer writes mail to the application log instead of sending it
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, m Mail) error {
	logger.Info(ctx, "Mail delivery skipped, SMTP not configured",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}
