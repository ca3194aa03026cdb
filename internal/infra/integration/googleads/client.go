package googleads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
	"github.com/xavierca1/marketinghub/internal/infra/integration/sampledata"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type Client struct {
	conf *oauth2.Config
	now  func() time.Time
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{AdwordsScope},
			Endpoint:     endpoints.Google,
		},
		now: time.Now,
	}
}

func (c *Client) DisplayName() string { return displayName }

// Google só renova com refresh token.
func (c *Client) RequiresRefreshToken() bool { return true }

// AuthCodeURL pede acesso offline com consentimento para receber o refresh token.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *Client) Exchange(ctx context.Context, code string) (*entity.OAuthToken, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google ads token exchange: %w", err)
	}
	return toEntity(tok), nil
}

func (c *Client) Refresh(ctx context.Context, token *entity.OAuthToken) (*entity.OAuthToken, error) {
	if token.RefreshToken == "" {
		return nil, errors.New("google ads: missing refresh token")
	}

	// Expiry no passado força o TokenSource a ir no endpoint de refresh.
	stale := &oauth2.Token{
		RefreshToken: token.RefreshToken,
		Expiry:       c.now().Add(-time.Minute),
	}
	tok, err := c.conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("google ads token refresh: %w", err)
	}
	return toEntity(tok), nil
}

// FetchCampaigns devolve linhas diárias sintéticas para o período.
// TODO: chamar a API de relatórios do Google Ads (searchStream) com o access token.
func (c *Client) FetchCampaigns(ctx context.Context, token *entity.OAuthToken, start, end time.Time) ([]entity.CampaignMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampledata.Generate(campaigns, metricRanges, start, end), nil
}

func toEntity(tok *oauth2.Token) *entity.OAuthToken {
	out := &entity.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		out.ExpiresAt = &exp
	}
	return out
}
