package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/aarsha-api/internal/config"
)

// Mailer sends emails. Delivery is best-effort: a failure never rolls back
// state already written by the caller.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	timeout  time.Duration
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		timeout:  cfg.SMTPTimeout,
	}
}

// SendEmail delivers the message with a bounded timeout. net/smtp has no
// context support, so the dial-and-send runs in its own goroutine and the
// caller is released when the deadline passes.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.send(to, subject, body)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	}
}

func (m *mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
