package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EmailLogStatusSent = "sent"

// EmailLog registra um email entregue. Com AutomationID e LeadID preenchidos
// a linha também marca o par como já enviado; o banco guarda no máximo uma
// linha por par.
type EmailLog struct {
	ID           string    `json:"id"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Sender       string    `json:"sender"`
	LeadID       *string   `json:"lead_id,omitempty"`
	AutomationID *string   `json:"automation_id,omitempty"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
}

func NewAutomationEmailLog(automationID, leadID, recipient, subject, body, sender string, sentAt time.Time) *EmailLog {
	return &EmailLog{
		ID:           uuid.New().String(),
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		Sender:       sender,
		LeadID:       &leadID,
		AutomationID: &automationID,
		Status:       EmailLogStatusSent,
		SentAt:       sentAt,
	}
}

type EmailLogRepositoryInterface interface {
	Exists(ctx context.Context, automationID, leadID string) (bool, error)
	// Record devolve ErrAlreadyRecorded quando o par já tem linha.
	Record(ctx context.Context, log *EmailLog) error
}
