package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusProposal  LeadStatus = "proposal"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusProposal, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// Lead pertence exclusivamente ao UserID que o criou.
// Email, Phone e Notes vazios equivalem a NULL no banco.
type Lead struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Status    LeadStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Factory
func NewLead(userID, name, email, phone string, status LeadStatus, notes string) (*Lead, error) {
	if status == "" {
		status = LeadStatusNew
	}

	lead := &Lead{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Status:    status,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.UserID == "" {
		return errors.New("user_id is required")
	}
	if l.Name == "" {
		return errors.New("name is required")
	}
	if !l.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}

// HasEmail diz se o lead tem para onde enviar.
func (l *Lead) HasEmail() bool {
	return strings.TrimSpace(l.Email) != ""
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id, userID string) error
	FindByID(ctx context.Context, id, userID string) (*Lead, error)
	ListByUser(ctx context.Context, userID string) ([]Lead, error)
}
