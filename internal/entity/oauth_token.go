package entity

import (
	"context"
	"time"
)

type Platform string

const (
	PlatformGoogleAds Platform = "google_ads"
	PlatformMetaAds   Platform = "meta_ads"
)

func (p Platform) Valid() bool {
	return p == PlatformGoogleAds || p == PlatformMetaAds
}

// OAuthToken guarda as credenciais de uma conta de anúncios conectada.
// Um token por (UserID, Provider).
type OAuthToken struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Provider     Platform   `json:"provider"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Expired diz se o access token precisa ser renovado antes do uso.
// Token sem expiração nunca expira.
func (t *OAuthToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

type OAuthTokenRepositoryInterface interface {
	// Upsert insere ou substitui o token de (UserID, Provider).
	Upsert(ctx context.Context, token *OAuthToken) error
	FindByProvider(ctx context.Context, userID string, provider Platform) (*OAuthToken, error)
	ListByUser(ctx context.Context, userID string) ([]OAuthToken, error)
}
