package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type TriggerAutomationInput struct {
	AutomationID string `json:"automationId" validate:"required"`
	LeadID       string `json:"leadId" validate:"required"`
}

// TriggerAutomationUseCase força o email de uma automação para um lead.
// Ignora a condição do gatilho e o status da regra; o lead ainda precisa
// de email.
type TriggerAutomationUseCase struct {
	AutomationRepo entity.AutomationRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	Dispatcher     *Dispatcher
	Logger         logrus.FieldLogger
}

func NewTriggerAutomationUseCase(
	automationRepo entity.AutomationRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	dispatcher *Dispatcher,
	logger logrus.FieldLogger,
) *TriggerAutomationUseCase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TriggerAutomationUseCase{
		AutomationRepo: automationRepo,
		LeadRepo:       leadRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	}
}

func (uc *TriggerAutomationUseCase) Execute(ctx context.Context, userID string, input TriggerAutomationInput) error {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return invalid("Missing automationId or leadId")
	}

	a, err := uc.AutomationRepo.FindByID(ctx, input.AutomationID, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Automation not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load automation", Err: err}
	}

	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Lead not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load lead", Err: err}
	}

	if !lead.HasEmail() {
		return &DomainError{Code: CodeLeadNoEmail, Message: "Lead does not have an email address"}
	}

	err = uc.Dispatcher.Deliver(ctx, a, lead)
	if errors.Is(err, entity.ErrAlreadyRecorded) {
		// Envio de teste: o log do par já existe e continua único.
		err = nil
	}
	if err != nil {
		return &TechnicalError{Code: "SEND_FAILED", Message: "failed to trigger email automation", Err: err}
	}

	uc.Logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"automation_id": a.ID,
		"lead_id":       lead.ID,
	}).Info("manual automation email sent")
	return nil
}
