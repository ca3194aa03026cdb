package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type AutomationRepository struct {
	DB *sql.DB
}

func NewAutomationRepository(db *sql.DB) *AutomationRepository {
	return &AutomationRepository{DB: db}
}

const automationColumns = `id, user_id, name, trigger_type, delay_days, trigger_status,
	email_subject, email_body, template_id, status, created_at, updated_at`

func (r *AutomationRepository) Create(ctx context.Context, a *entity.Automation) error {
	query := `
		INSERT INTO email_automations (
			id, user_id, name, trigger_type, delay_days, trigger_status,
			email_subject, email_body, template_id, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		string(a.TriggerType),
		a.DelayDays,
		leadStatusPtr(a.TriggerStatus),
		a.EmailSubject,
		a.EmailBody,
		a.TemplateID,
		string(a.Status),
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert automation: %w", err)
	}
	return nil
}

func (r *AutomationRepository) Update(ctx context.Context, a *entity.Automation) error {
	query := `
		UPDATE email_automations
		SET name = $1, trigger_type = $2, delay_days = $3, trigger_status = $4,
			email_subject = $5, email_body = $6, template_id = $7, status = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`

	res, err := r.DB.ExecContext(ctx, query,
		a.Name,
		string(a.TriggerType),
		a.DelayDays,
		leadStatusPtr(a.TriggerStatus),
		a.EmailSubject,
		a.EmailBody,
		a.TemplateID,
		string(a.Status),
		a.UpdatedAt,
		a.ID,
		a.UserID,
	)
	if err != nil {
		return fmt.Errorf("update automation: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *AutomationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_automations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete automation: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *AutomationRepository) FindByID(ctx context.Context, id, userID string) (*entity.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM email_automations WHERE id = $1 AND user_id = $2`

	a, err := scanAutomation(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find automation: %w", err)
	}
	return a, nil
}

func (r *AutomationRepository) ListByUser(ctx context.Context, userID string) ([]entity.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM email_automations WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *AutomationRepository) ListActive(ctx context.Context, userID *string) ([]entity.Automation, error) {
	if userID != nil {
		query := `SELECT ` + automationColumns + ` FROM email_automations
			WHERE status = 'active' AND user_id = $1 ORDER BY created_at`
		return r.list(ctx, query, *userID)
	}
	query := `SELECT ` + automationColumns + ` FROM email_automations
		WHERE status = 'active' ORDER BY user_id, created_at`
	return r.list(ctx, query)
}

func (r *AutomationRepository) list(ctx context.Context, query string, args ...any) ([]entity.Automation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	defer rows.Close()

	var out []entity.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan automation: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAutomation(row rowScanner) (*entity.Automation, error) {
	var (
		a                         entity.Automation
		triggerType, status       string
		delayDays                 sql.NullInt32
		triggerStatus, templateID sql.NullString
		updatedAt                 sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&triggerType,
		&delayDays,
		&triggerStatus,
		&a.EmailSubject,
		&a.EmailBody,
		&templateID,
		&status,
		&a.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.TriggerType = entity.TriggerType(triggerType)
	a.Status = entity.AutomationStatus(status)
	if delayDays.Valid {
		d := int(delayDays.Int32)
		a.DelayDays = &d
	}
	if triggerStatus.Valid {
		s := entity.LeadStatus(triggerStatus.String)
		a.TriggerStatus = &s
	}
	if templateID.Valid {
		id := templateID.String
		a.TemplateID = &id
	}
	a.UpdatedAt = nullTime(updatedAt)
	return &a, nil
}

func leadStatusPtr(s *entity.LeadStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
