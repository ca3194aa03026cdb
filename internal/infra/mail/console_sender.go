package mail

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

// ConsoleSender só loga a mensagem. Modo de desenvolvimento.
type ConsoleSender struct {
	From   string
	Logger logrus.FieldLogger
}

func NewConsoleSender(from string, logger logrus.FieldLogger) *ConsoleSender {
	return &ConsoleSender{From: from, Logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg usecase.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{
		"from":    s.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email NOT sent (console transport)")
	return nil
}
