package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type CampaignDataRepository struct {
	DB *sql.DB
}

func NewCampaignDataRepository(db *sql.DB) *CampaignDataRepository {
	return &CampaignDataRepository{DB: db}
}

// SaveBatch grava o lote inteiro numa transação: ou tudo ou nada.
func (r *CampaignDataRepository) SaveBatch(ctx context.Context, userID string, platform entity.Platform, rows []entity.CampaignMetric, fetchedAt time.Time) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin campaign batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_data (
			user_id, platform, campaign_id, campaign_name, date,
			spend, clicks, impressions, conversions, cpc, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("prepare campaign insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range rows {
		_, err := stmt.ExecContext(ctx,
			userID,
			string(platform),
			m.CampaignID,
			m.CampaignName,
			m.Date,
			m.Spend.StringFixed(2),
			m.Clicks,
			m.Impressions,
			m.Conversions,
			m.CPC.StringFixed(2),
			fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("insert campaign %s/%s: %w", m.CampaignID, m.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit campaign batch: %w", err)
	}
	return nil
}
