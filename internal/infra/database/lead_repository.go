package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, user_id, name, email, phone, status, notes, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, user_id, name, email, phone, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		string(lead.Status),
		nullString(lead.Notes),
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET name = $1, email = $2, phone = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		string(lead.Status),
		nullString(lead.Notes),
		lead.UpdatedAt,
		lead.ID,
		lead.UserID,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *LeadRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return affectedOne(res, entity.ErrNotFound)
}

func (r *LeadRepository) FindByID(ctx context.Context, id, userID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) ListByUser(ctx context.Context, userID string) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead                entity.Lead
		email, phone, notes sql.NullString
		status              string
		updatedAt           sql.NullTime
	)

	err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.Name,
		&email,
		&phone,
		&status,
		&notes,
		&lead.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = fromNull(email)
	lead.Phone = fromNull(phone)
	lead.Notes = fromNull(notes)
	lead.Status = entity.LeadStatus(status)
	lead.UpdatedAt = nullTime(updatedAt)
	return &lead, nil
}
