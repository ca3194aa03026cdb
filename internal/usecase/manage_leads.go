package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type LeadInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email,max=320"`
	Phone  string `json:"phone" validate:"omitempty,max=50"`
	Status string `json:"status" validate:"omitempty,oneof=new contacted qualified proposal won lost"`
	Notes  string `json:"notes" validate:"max=5000"`
}

func (in *LeadInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Status = strings.TrimSpace(in.Status)
}

// LeadUseCase cobre o CRM de leads. Criação e atualização publicam um pedido
// de varredura: automações por status reagem sem esperar o próximo cron.
type LeadUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Queue  SweepPublisher
	Logger logrus.FieldLogger
	Now    func() time.Time
}

func NewLeadUseCase(repo entity.LeadRepositoryInterface, queue SweepPublisher, logger logrus.FieldLogger) *LeadUseCase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LeadUseCase{Repo: repo, Queue: queue, Logger: logger, Now: time.Now}
}

func (uc *LeadUseCase) Create(ctx context.Context, userID string, input LeadInput) (*entity.Lead, error) {
	input.normalize()
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := entity.NewLead(userID, input.Name, input.Email, input.Phone, entity.LeadStatus(input.Status), input.Notes)
	if err != nil {
		return nil, invalid(err.Error())
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to create lead", Err: err}
	}

	uc.announce(ctx, userID, "lead_created", lead.ID)
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, userID, id string, input LeadInput) (*entity.Lead, error) {
	input.normalize()
	if strings.TrimSpace(id) == "" {
		return nil, invalid("Lead ID and name are required")
	}
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := uc.Repo.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Lead not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to load lead", Err: err}
	}

	lead.Name = input.Name
	lead.Email = input.Email
	lead.Phone = input.Phone
	lead.Notes = input.Notes
	if input.Status != "" {
		lead.Status = entity.LeadStatus(input.Status)
	}
	now := uc.now()
	lead.UpdatedAt = &now

	if err := lead.Validate(); err != nil {
		return nil, invalid(err.Error())
	}

	if err := uc.Repo.Update(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Lead not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to update lead", Err: err}
	}

	uc.announce(ctx, userID, "lead_updated", lead.ID)
	return lead, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("Lead ID is required")
	}
	if err := uc.Repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Lead not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to delete lead", Err: err}
	}
	return nil
}

func (uc *LeadUseCase) Get(ctx context.Context, userID, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Lead not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to load lead", Err: err}
	}
	return lead, nil
}

func (uc *LeadUseCase) List(ctx context.Context, userID string) ([]entity.Lead, error) {
	leads, err := uc.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to list leads", Err: err}
	}
	return leads, nil
}

// announce publica o pedido de sweep. Falha na fila não desfaz o CRUD.
func (uc *LeadUseCase) announce(ctx context.Context, userID, reason, leadID string) {
	if uc.Queue == nil {
		return
	}
	req := SweepRequest{UserID: userID, Reason: reason, LeadID: leadID, RequestedAt: uc.now()}
	if err := uc.Queue.PublishSweepRequest(ctx, req); err != nil {
		uc.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"lead_id": leadID,
			"reason":  reason,
		}).WithError(err).Warn("lead saved but sweep request was not published")
	}
}

func (uc *LeadUseCase) now() time.Time {
	if uc.Now == nil {
		return time.Now().UTC()
	}
	return uc.Now().UTC()
}
