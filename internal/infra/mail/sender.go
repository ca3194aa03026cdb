package mail

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
	"gopkg.in/gomail.v2"
)

// SMTPSender entrega via SMTP com gomail.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string

	dial func(m *gomail.Message) error
}

func NewSMTPSender(host string, port int, user, password, from, fromName string) *SMTPSender {
	s := &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: fromName,
	}
	s.dial = func(m *gomail.Message) error {
		d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
		return d.DialAndSend(m)
	}
	return s
}

// Send devolve ctx.Err() se o prazo vencer antes de a troca SMTP terminar.
// A troca continua rodando em background.
func (s *SMTPSender) Send(ctx context.Context, msg usecase.Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	done := make(chan error, 1)
	go func() { done <- s.dial(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("erro ao enviar email SMTP: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewTransport escolhe o transporte: SendGrid, depois SMTP, senão console.
func NewTransport(cfg Config, logger logrus.FieldLogger) usecase.EmailTransport {
	switch {
	case cfg.SendGridAPIKey != "":
		logger.Info("email transport: sendgrid")
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	case cfg.Host != "":
		logger.WithField("host", cfg.Host).Info("email transport: smtp")
		return NewSMTPSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From, cfg.FromName)
	default:
		logger.Warn("email transport: console only, no email will leave this process")
		return NewConsoleSender(cfg.From, logger)
	}
}
