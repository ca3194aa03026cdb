package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type TemplateInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required"`
}

type TemplateUseCase struct {
	Repo entity.TemplateRepositoryInterface
	Now  func() time.Time
}

func NewTemplateUseCase(repo entity.TemplateRepositoryInterface) *TemplateUseCase {
	return &TemplateUseCase{Repo: repo, Now: time.Now}
}

func (uc *TemplateUseCase) Create(ctx context.Context, userID string, input TemplateInput) (*entity.EmailTemplate, error) {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	t, err := entity.NewEmailTemplate(userID, input.Name, input.Subject, input.Body)
	if err != nil {
		return nil, invalid(err.Error())
	}
	if err := uc.Repo.Create(ctx, t); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to create email template", Err: err}
	}
	return t, nil
}

func (uc *TemplateUseCase) Update(ctx context.Context, userID, id string, input TemplateInput) (*entity.EmailTemplate, error) {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	t, err := uc.Repo.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Template not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to load email template", Err: err}
	}

	t.Name = input.Name
	t.Subject = input.Subject
	t.Body = input.Body
	now := uc.Now().UTC()
	t.UpdatedAt = &now
	if err := t.Validate(); err != nil {
		return nil, invalid(err.Error())
	}

	if err := uc.Repo.Update(ctx, t); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("Template not found or you don't have permission")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to update email template", Err: err}
	}
	return t, nil
}

func (uc *TemplateUseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.Repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Template not found or you don't have permission")
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to delete email template", Err: err}
	}
	return nil
}

func (uc *TemplateUseCase) List(ctx context.Context, userID string) ([]entity.EmailTemplate, error) {
	items, err := uc.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to fetch email templates", Err: err}
	}
	return items, nil
}
