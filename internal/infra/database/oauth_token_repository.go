package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xavierca1/marketinghub/internal/entity"
)

type OAuthTokenRepository struct {
	DB *sql.DB
}

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository {
	return &OAuthTokenRepository{DB: db}
}

const tokenColumns = `id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at`

// Upsert mantém uma linha por (user, provider). Reconexão sem refresh token
// novo mantém o que já estava gravado.
func (r *OAuthTokenRepository) Upsert(ctx context.Context, t *entity.OAuthToken) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO oauth_tokens (id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT oauth_tokens_user_provider_key DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, oauth_tokens.refresh_token),
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.DB.QueryRowContext(ctx, query,
		t.ID,
		t.UserID,
		string(t.Provider),
		t.AccessToken,
		nullString(t.RefreshToken),
		t.ExpiresAt,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("upsert oauth token: %w", err)
	}
	return nil
}

func (r *OAuthTokenRepository) FindByProvider(ctx context.Context, userID string, provider entity.Platform) (*entity.OAuthToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM oauth_tokens WHERE user_id = $1 AND provider = $2`

	t, err := scanToken(r.DB.QueryRowContext(ctx, query, userID, string(provider)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find oauth token: %w", err)
	}
	return t, nil
}

func (r *OAuthTokenRepository) ListByUser(ctx context.Context, userID string) ([]entity.OAuthToken, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+tokenColumns+` FROM oauth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list oauth tokens: %w", err)
	}
	defer rows.Close()

	var out []entity.OAuthToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan oauth token: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanToken(row rowScanner) (*entity.OAuthToken, error) {
	var (
		t         entity.OAuthToken
		provider  string
		refresh   sql.NullString
		expiresAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &provider, &t.AccessToken, &refresh, &expiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Provider = entity.Platform(provider)
	t.RefreshToken = fromNull(refresh)
	t.ExpiresAt = nullTime(expiresAt)
	return &t, nil
}
