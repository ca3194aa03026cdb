package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type EmailLogRepository struct {
	DB *sql.DB
}

func NewEmailLogRepository(db *sql.DB) *EmailLogRepository {
	return &EmailLogRepository{DB: db}
}

func (r *EmailLogRepository) Exists(ctx context.Context, automationID, leadID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM email_logs WHERE automation_id = $1 AND lead_id = $2)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, automationID, leadID).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup email log: %w", err)
	}
	return exists, nil
}

// Record insere o log. O par (automation, lead) é único: um conflito vira ErrAlreadyRecorded.
func (r *EmailLogRepository) Record(ctx context.Context, log *entity.EmailLog) error {
	query := `
		INSERT INTO email_logs (id, recipient, subject, body, sender, lead_id, automation_id, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT email_logs_automation_lead_key DO NOTHING
	`

	res, err := r.DB.ExecContext(ctx, query,
		log.ID,
		log.Recipient,
		log.Subject,
		log.Body,
		log.Sender,
		log.LeadID,
		log.AutomationID,
		log.Status,
		log.SentAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrAlreadyRecorded
		}
		return fmt.Errorf("insert email log: %w", err)
	}
	return affectedOne(res, entity.ErrAlreadyRecorded)
}
