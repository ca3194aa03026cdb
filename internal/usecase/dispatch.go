package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

var (
	ErrLeadWithoutEmail = errors.New("lead does not have an email address")
	ErrSendTimeout      = errors.New("email dispatch timed out")
)

// SendError é falha do próprio transporte; nada foi gravado.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return "sending email: " + e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// RecordError é um envio que saiu mas cujo log não foi gravado.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string { return "recording email log: " + e.Err.Error() }
func (e *RecordError) Unwrap() error { return e.Err }

// Dispatcher renderiza a automação para o lead, envia e grava o log.
// O log só é gravado depois que o transporte aceitou a mensagem.
type Dispatcher struct {
	Transport    EmailTransport
	EmailLogRepo entity.EmailLogRepositoryInterface
	Sender       string
	SendTimeout  time.Duration
	Now          func() time.Time
}

func NewDispatcher(transport EmailTransport, logRepo entity.EmailLogRepositoryInterface, sender string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		Transport:    transport,
		EmailLogRepo: logRepo,
		Sender:       sender,
		SendTimeout:  timeout,
		Now:          time.Now,
	}
}

// Deliver devolve entity.ErrAlreadyRecorded (dentro de um RecordError) quando
// a mensagem saiu mas outro processo já tinha gravado o par.
func (d *Dispatcher) Deliver(ctx context.Context, a *entity.Automation, lead *entity.Lead) error {
	if !lead.HasEmail() {
		return ErrLeadWithoutEmail
	}

	msg := Message{
		To:      lead.Email,
		Subject: RenderTemplate(a.EmailSubject, lead),
		Body:    RenderTemplate(a.EmailBody, lead),
	}

	if err := d.send(ctx, msg); err != nil {
		return &SendError{Err: err}
	}

	entry := entity.NewAutomationEmailLog(a.ID, lead.ID, msg.To, msg.Subject, msg.Body, d.Sender, d.now())
	if err := d.EmailLogRepo.Record(ctx, entry); err != nil {
		return &RecordError{Err: err}
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	sendCtx := ctx
	if d.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.SendTimeout)
		defer cancel()
	}

	err := d.Transport.Send(sendCtx, msg)
	if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
		// Estourou o prazo: mesmo que o transporte diga ok, não registramos.
		if err == nil {
			return ErrSendTimeout
		}
		return fmt.Errorf("%w: %v", ErrSendTimeout, err)
	}
	return err
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}
