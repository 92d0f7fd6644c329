package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"
)

type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, "Estate Admin"))
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// RecordingSender keeps messages in memory instead of delivering them.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func NewRecordingSender() *RecordingSender { return &RecordingSender{} }

func (s *RecordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *RecordingSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// LogSender writes messages to the log. It stands in for SMTP when no host is
// configured outside production.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail delivery disabled, message logged",
		"to", msg.To,
		"subject", msg.Subject,
		"reply_to", msg.ReplyTo,
	)
	return nil
}
