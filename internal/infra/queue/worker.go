package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

// TenantSweeper roda a varredura de um único tenant.
type TenantSweeper interface {
	ExecuteTenant(ctx context.Context, userID string, now time.Time) (*usecase.SweepSummary, error)
}

type Worker struct {
	Channel *amqp.Channel
	Sweeper TenantSweeper
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

func NewWorker(ch *amqp.Channel, sweeper TenantSweeper, logger logrus.FieldLogger) *Worker {
	return &Worker{
		Channel: ch,
		Sweeper: sweeper,
		Logger:  logger,
		Now:     time.Now,
	}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.WithField("queue", queueName).Info("sweep worker waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var req usecase.SweepRequest
	if err := json.Unmarshal(d.Body, &req); err != nil || req.UserID == "" {
		// Mensagem podre. Rejeita sem requeue para não travar a fila.
		w.Logger.WithError(err).Error("invalid sweep request")
		d.Nack(false, false)
		return
	}

	log := w.Logger.WithFields(logrus.Fields{"user_id": req.UserID, "reason": req.Reason})

	summary, err := w.Sweeper.ExecuteTenant(ctx, req.UserID, w.Now())
	if err != nil {
		if ctx.Err() != nil {
			// Desligando: devolve para a fila, outro consumidor refaz.
			log.WithError(err).Warn("tenant sweep interrupted, requeueing")
			d.Nack(false, true)
			return
		}
		log.WithError(err).Error("tenant sweep aborted")
		d.Nack(false, false)
		return
	}

	log.WithFields(logrus.Fields{
		"matched": summary.Matched,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"errored": summary.Errored,
	}).Info("tenant sweep finished")
	d.Ack(false)
}
