package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type AutomationInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	TriggerType   string `json:"trigger_type" validate:"required,oneof=time status"`
	DelayDays     *int   `json:"delay_days" validate:"omitempty,min=0"`
	TriggerStatus string `json:"trigger_status" validate:"omitempty,oneof=new contacted qualified proposal won lost"`
	EmailSubject  string `json:"email_subject" validate:"max=500"`
	EmailBody     string `json:"email_body"`
	TemplateID    string `json:"template_id"`
	Status        string `json:"status" validate:"omitempty,oneof=active paused draft"`
}

type AutomationUseCase struct {
	Repo         entity.AutomationRepositoryInterface
	TemplateRepo entity.TemplateRepositoryInterface
	Now          func() time.Time
}

func NewAutomationUseCase(repo entity.AutomationRepositoryInterface, templateRepo entity.TemplateRepositoryInterface) *AutomationUseCase {
	return &AutomationUseCase{Repo: repo, TemplateRepo: templateRepo, Now: time.Now}
}

func (uc *AutomationUseCase) Create(ctx context.Context, userID string, input AutomationInput) (*entity.Automation, error) {
	if err := uc.check(&input); err != nil {
		return nil, err
	}

	a := &entity.Automation{
		UserID:       userID,
		Name:         input.Name,
		EmailSubject: input.EmailSubject,
		EmailBody:    input.EmailBody,
		Status:       entity.AutomationStatus(input.Status),
	}
	if err := uc.applyTemplate(ctx, userID, a, input.TemplateID); err != nil {
		return nil, err
	}

	created, err := entity.NewAutomation(userID, a.Name, entity.TriggerType(input.TriggerType), input.DelayDays,
		triggerStatus(input.TriggerStatus), a.EmailSubject, a.EmailBody, a.TemplateID, a.Status)
	if err != nil {
		return nil, invalid(err.Error())
	}
	created.CreatedAt = uc.now()

	if err := uc.Repo.Create(ctx, created); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to create email automation", Err: err}
	}
	return created, nil
}

func (uc *AutomationUseCase) Update(ctx context.Context, userID, id string, input AutomationInput) (*entity.Automation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("Missing automation ID")
	}
	if err := uc.check(&input); err != nil {
		return nil, err
	}

	a, err := uc.Repo.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Automation not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to load email automation", Err: err}
	}

	a.Name = input.Name
	a.SetTrigger(entity.TriggerType(input.TriggerType), input.DelayDays, triggerStatus(input.TriggerStatus))
	a.EmailSubject = input.EmailSubject
	a.EmailBody = input.EmailBody
	a.TemplateID = nil
	a.Status = entity.AutomationStatus(input.Status)
	if a.Status == "" {
		a.Status = entity.AutomationActive
	}
	if err := uc.applyTemplate(ctx, userID, a, input.TemplateID); err != nil {
		return nil, err
	}
	now := uc.now()
	a.UpdatedAt = &now

	if err := a.Validate(); err != nil {
		return nil, invalid(err.Error())
	}

	if err := uc.Repo.Update(ctx, a); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Automation not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to update email automation", Err: err}
	}
	return a, nil
}

func (uc *AutomationUseCase) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("Missing automation ID")
	}
	if err := uc.Repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Automation not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to delete email automation", Err: err}
	}
	return nil
}

func (uc *AutomationUseCase) List(ctx context.Context, userID string) ([]entity.Automation, error) {
	items, err := uc.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to fetch email automations", Err: err}
	}
	return items, nil
}

// check aplica as regras da requisição: campos obrigatórios, depois o campo
// que o tipo de gatilho exige. Assunto e corpo podem vir de um template.
func (uc *AutomationUseCase) check(input *AutomationInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.TemplateID = strings.TrimSpace(input.TemplateID)

	if errs := ValidateStruct(*input); len(errs) > 0 {
		return validationFailed(errs)
	}
	if input.TemplateID == "" && (strings.TrimSpace(input.EmailSubject) == "" || strings.TrimSpace(input.EmailBody) == "") {
		return invalid("Missing required fields")
	}

	switch entity.TriggerType(input.TriggerType) {
	case entity.TriggerTime:
		if input.DelayDays == nil {
			return invalid("Missing delay_days for time-based trigger")
		}
	case entity.TriggerStatus:
		if input.TriggerStatus == "" {
			return invalid("Missing trigger_status for status-based trigger")
		}
	}
	return nil
}

func (uc *AutomationUseCase) applyTemplate(ctx context.Context, userID string, a *entity.Automation, templateID string) error {
	if templateID == "" {
		return nil
	}
	if uc.TemplateRepo == nil {
		return invalid("templates are not available")
	}

	t, err := uc.TemplateRepo.FindByID(ctx, templateID, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Template not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to load email template", Err: err}
	}
	a.ApplyTemplate(t)
	return nil
}

func (uc *AutomationUseCase) now() time.Time {
	if uc.Now == nil {
		return time.Now().UTC()
	}
	return uc.Now().UTC()
}

func triggerStatus(s string) *entity.LeadStatus {
	if s == "" {
		return nil
	}
	ls := entity.LeadStatus(s)
	return &ls
}
