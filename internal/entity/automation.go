package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TriggerType string

const (
	TriggerTime   TriggerType = "time"
	TriggerStatus TriggerType = "status"
)

type AutomationStatus string

const (
	AutomationActive AutomationStatus = "active"
	AutomationPaused AutomationStatus = "paused"
	AutomationDraft  AutomationStatus = "draft"
)

func (s AutomationStatus) Valid() bool {
	return s == AutomationActive || s == AutomationPaused || s == AutomationDraft
}

var (
	ErrMissingDelayDays     = errors.New("delay_days is required for time-based trigger")
	ErrNegativeDelayDays    = errors.New("delay_days must not be negative")
	ErrMissingTriggerStatus = errors.New("trigger_status is required for status-based trigger")
	ErrInvalidTriggerStatus = errors.New("trigger_status is not a valid lead status")
	ErrInvalidTriggerType   = errors.New("trigger_type must be time or status")
)

// Automation é uma regra de email: a condição de gatilho mais o email a
// enviar quando um lead a satisfaz.
type Automation struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Name          string           `json:"name"`
	TriggerType   TriggerType      `json:"trigger_type"`
	DelayDays     *int             `json:"delay_days"`
	TriggerStatus *LeadStatus      `json:"trigger_status"`
	EmailSubject  string           `json:"email_subject"`
	EmailBody     string           `json:"email_body"`
	TemplateID    *string          `json:"template_id"`
	Status        AutomationStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty"`
}

func NewAutomation(userID, name string, triggerType TriggerType, delayDays *int, triggerStatus *LeadStatus,
	subject, body string, templateID *string, status AutomationStatus) (*Automation, error) {
	if status == "" {
		status = AutomationActive
	}

	a := &Automation{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		TriggerType:  triggerType,
		EmailSubject: subject,
		EmailBody:    body,
		TemplateID:   templateID,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	a.SetTrigger(triggerType, delayDays, triggerStatus)

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// SetTrigger guarda só o campo do tipo de gatilho; o outro é zerado.
func (a *Automation) SetTrigger(triggerType TriggerType, delayDays *int, triggerStatus *LeadStatus) {
	a.TriggerType = triggerType
	a.DelayDays = nil
	a.TriggerStatus = nil

	switch triggerType {
	case TriggerTime:
		a.DelayDays = delayDays
	case TriggerStatus:
		a.TriggerStatus = triggerStatus
	}
}

// Validate confere a regra na criação/edição.
func (a *Automation) Validate() error {
	if a.UserID == "" {
		return errors.New("user_id is required")
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(a.EmailSubject) == "" {
		return errors.New("email_subject is required")
	}
	if strings.TrimSpace(a.EmailBody) == "" {
		return errors.New("email_body is required")
	}
	if !a.Status.Valid() {
		return errors.New("status must be active, paused or draft")
	}
	return a.CheckTrigger()
}

// CheckTrigger diz se a regra tem os campos que o tipo de gatilho exige.
// Regras do banco que falham aqui são puladas na varredura.
func (a *Automation) CheckTrigger() error {
	switch a.TriggerType {
	case TriggerTime:
		if a.DelayDays == nil {
			return ErrMissingDelayDays
		}
		if *a.DelayDays < 0 {
			return ErrNegativeDelayDays
		}
	case TriggerStatus:
		if a.TriggerStatus == nil || *a.TriggerStatus == "" {
			return ErrMissingTriggerStatus
		}
		if !a.TriggerStatus.Valid() {
			return ErrInvalidTriggerStatus
		}
	default:
		return ErrInvalidTriggerType
	}
	return nil
}

func (a *Automation) IsActive() bool {
	return a.Status == AutomationActive
}

// ApplyTemplate copia o conteúdo do template para a regra. A escolha do
// template acontece na edição, nunca no envio.
func (a *Automation) ApplyTemplate(t *EmailTemplate) {
	id := t.ID
	a.TemplateID = &id
	a.EmailSubject = t.Subject
	a.EmailBody = t.Body
}

type AutomationRepositoryInterface interface {
	Create(ctx context.Context, a *Automation) error
	Update(ctx context.Context, a *Automation) error
	Delete(ctx context.Context, id, userID string) error
	FindByID(ctx context.Context, id, userID string) (*Automation, error)
	ListByUser(ctx context.Context, userID string) ([]Automation, error)
	// ListActive devolve as regras ativas de um dono, ou de todos quando
	// userID é nil.
	ListActive(ctx context.Context, userID *string) ([]Automation, error)
}
