package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/logger"
)

// LogSender stands in for a real mail transport in development. The message
// body carries verification links, so it is logged in full.
type LogSender struct {
	log *zap.Logger
}

var _ port.EmailSender = (*LogSender)(nil)

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info("email delivery disabled, logging instead",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
