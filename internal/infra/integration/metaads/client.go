package metaads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
	"github.com/xavierca1/marketinghub/internal/infra/integration/sampledata"
	"golang.org/x/oauth2"
)

type Client struct {
	conf     *oauth2.Config
	graphURL string
	http     *http.Client
	now      func() time.Time
}

func NewClient(appID, appSecret, redirectURL string) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.facebook.com/" + graphVersion + "/dialog/oauth",
				TokenURL:  "https://graph.facebook.com/" + graphVersion + "/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		graphURL: "https://graph.facebook.com/" + graphVersion,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

func (c *Client) DisplayName() string { return displayName }

// Meta não emite refresh token: o token de longa duração é trocado por outro.
func (c *Client) RequiresRefreshToken() bool { return false }

func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

func (c *Client) Exchange(ctx context.Context, code string) (*entity.OAuthToken, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("meta ads token exchange: %w", err)
	}
	out := &entity.OAuthToken{AccessToken: tok.AccessToken}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		out.ExpiresAt = &exp
	}
	return out, nil
}

// Refresh troca o access token atual por um novo via fb_exchange_token.
func (c *Client) Refresh(ctx context.Context, token *entity.OAuthToken) (*entity.OAuthToken, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", c.conf.ClientID)
	q.Set("client_secret", c.conf.ClientSecret)
	q.Set("fb_exchange_token", token.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+"/oauth/access_token?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request meta: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var ge graphError
		if json.Unmarshal(body, &ge) == nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("meta token refresh failed: %d - %s", resp.StatusCode, ge.Error.Message)
		}
		return nil, fmt.Errorf("meta token refresh failed: %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("meta token refresh: invalid response: %w", err)
	}

	out := &entity.OAuthToken{AccessToken: tr.AccessToken}
	if tr.ExpiresIn > 0 {
		exp := c.now().UTC().Add(time.Duration(tr.ExpiresIn) * time.Second)
		out.ExpiresAt = &exp
	}
	return out, nil
}

// FetchCampaigns devolve linhas diárias sintéticas para o período.
// TODO: ler /act_{id}/insights da Graph API com o access token.
func (c *Client) FetchCampaigns(ctx context.Context, token *entity.OAuthToken, start, end time.Time) ([]entity.CampaignMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampledata.Generate(campaigns, metricRanges, start, end), nil
}
