package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/logger"
)

// SMTPSender delivers mail over plain SMTP with optional AUTH. Messages are
// small transactional texts, so everything is sent inline.
type SMTPSender struct {
	cfg config.EmailSettings
	log *zap.Logger
}

var _ port.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg config.EmailSettings, log *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

// Send delivers a single plain-text message. The configured timeout caps the
// whole SMTP exchange even when the caller's context carries no deadline.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	msg := buildMessage(s.cfg.FromName, s.cfg.FromAddress, to, subject, body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("email: send to %s: %w", logger.MaskEmail(to), ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email: send to %s: %w", logger.MaskEmail(to), err)
		}
	}

	s.log.Debug("email sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}

func buildMessage(fromName, fromAddress, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
