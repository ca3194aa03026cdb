package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

const templateColumns = `id, user_id, name, subject, body, created_at, updated_at`

func (r *TemplateRepository) Create(ctx context.Context, t *entity.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, user_id, name, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := r.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Subject, t.Body, t.CreatedAt); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *entity.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET name = $1, subject = $2, body = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	res, err := r.DB.ExecContext(ctx, query, t.Name, t.Subject, t.Body, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *TemplateRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *TemplateRepository) FindByID(ctx context.Context, id, userID string) (*entity.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1 AND user_id = $2`

	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]entity.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []entity.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTemplate(row rowScanner) (*entity.EmailTemplate, error) {
	var (
		t         entity.EmailTemplate
		updatedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	t.UpdatedAt = nullTime(updatedAt)
	return &t, nil
}
