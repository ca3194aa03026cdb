package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

type ConnectionStatus struct {
	Platform  entity.Platform `json:"platform"`
	Connected bool            `json:"connected"`
	Expired   bool            `json:"expired"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// ConnectPlatformUseCase conduz o fluxo OAuth das plataformas de anúncios.
type ConnectPlatformUseCase struct {
	Platforms map[entity.Platform]AdPlatform
	TokenRepo entity.OAuthTokenRepositoryInterface
	Now       func() time.Time
}

func NewConnectPlatformUseCase(platforms map[entity.Platform]AdPlatform, tokenRepo entity.OAuthTokenRepositoryInterface) *ConnectPlatformUseCase {
	return &ConnectPlatformUseCase{Platforms: platforms, TokenRepo: tokenRepo, Now: time.Now}
}

func (uc *ConnectPlatformUseCase) AuthURL(platform entity.Platform, state string) (string, error) {
	client, err := uc.client(platform)
	if err != nil {
		return "", err
	}
	return client.AuthCodeURL(state), nil
}

// Complete troca o authorization code por tokens e os grava.
func (uc *ConnectPlatformUseCase) Complete(ctx context.Context, userID string, platform entity.Platform, code string) error {
	client, err := uc.client(platform)
	if err != nil {
		return err
	}
	if code == "" {
		return invalid("Invalid authentication state")
	}

	token, err := client.Exchange(ctx, code)
	if err != nil {
		return &TechnicalError{Code: "TOKEN_EXCHANGE_FAILED", Message: "Failed to connect " + client.DisplayName(), Err: err}
	}

	now := uc.Now().UTC()
	token.UserID = userID
	token.Provider = platform
	token.CreatedAt = now
	token.UpdatedAt = now

	if err := uc.TokenRepo.Upsert(ctx, token); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save oauth token", Err: err}
	}
	return nil
}

func (uc *ConnectPlatformUseCase) Status(ctx context.Context, userID string) ([]ConnectionStatus, error) {
	tokens, err := uc.TokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to list oauth tokens", Err: err}
	}

	byProvider := make(map[entity.Platform]entity.OAuthToken, len(tokens))
	for _, t := range tokens {
		byProvider[t.Provider] = t
	}

	now := uc.Now()
	out := make([]ConnectionStatus, 0, 2)
	for _, p := range []entity.Platform{entity.PlatformGoogleAds, entity.PlatformMetaAds} {
		st := ConnectionStatus{Platform: p}
		if t, ok := byProvider[p]; ok {
			st.Connected = true
			st.Expired = t.Expired(now)
			st.ExpiresAt = t.ExpiresAt
		}
		out = append(out, st)
	}
	return out, nil
}

// DisplayName devolve o nome legível da plataforma, ou o valor cru se desconhecida.
func (uc *ConnectPlatformUseCase) DisplayName(platform entity.Platform) string {
	if client, ok := uc.Platforms[platform]; ok {
		return client.DisplayName()
	}
	return string(platform)
}

func (uc *ConnectPlatformUseCase) client(platform entity.Platform) (AdPlatform, error) {
	client, ok := uc.Platforms[platform]
	if !platform.Valid() || !ok {
		return nil, &DomainError{Code: CodeInvalidPlatform, Message: "Invalid platform"}
	}
	return client, nil
}
