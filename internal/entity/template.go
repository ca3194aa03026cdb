package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EmailTemplate struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func NewEmailTemplate(userID, name, subject, body string) (*EmailTemplate, error) {
	t := &EmailTemplate{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *EmailTemplate) Validate() error {
	if t.UserID == "" {
		return errors.New("user_id is required")
	}
	if t.Name == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(t.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(t.Body) == "" {
		return errors.New("body is required")
	}
	return nil
}

type TemplateRepositoryInterface interface {
	Create(ctx context.Context, t *EmailTemplate) error
	Update(ctx context.Context, t *EmailTemplate) error
	Delete(ctx context.Context, id, userID string) error
	FindByID(ctx context.Context, id, userID string) (*EmailTemplate, error)
	ListByUser(ctx context.Context, userID string) ([]EmailTemplate, error)
}
