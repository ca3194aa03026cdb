package metaads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/marketinghub/internal/entity"
)

func TestAuthCodeURL(t *testing.T) {
	c := NewClient("app-id", "secret", "http://localhost:3000/api/ads/meta/callback")
	u, err := url.Parse(c.AuthCodeURL("abc"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u.String(), "https://www.facebook.com/v18.0/dialog/oauth"))
	assert.Equal(t, "abc", u.Query().Get("state"))
	assert.Equal(t, "ads_management pages_read_engagement business_management", u.Query().Get("scope"))
}

// TestRefreshExchangesLongLivedToken - refresh usa fb_exchange_token com o token atual
func TestRefreshExchangesLongLivedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "old-token", r.URL.Query().Get("fb_exchange_token"))
		w.Write([]byte(`{"access_token":"new-token","token_type":"bearer","expires_in":5184000}`))
	}))
	defer srv.Close()

	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewClient("app-id", "secret", "")
	c.graphURL = srv.URL
	c.now = func() time.Time { return fixed }

	tok, err := c.Refresh(context.Background(), &entity.OAuthToken{AccessToken: "old-token"})
	require.NoError(t, err)
	assert.Equal(t, "new-token", tok.AccessToken)
	require.NotNil(t, tok.ExpiresAt)
	assert.Equal(t, fixed.Add(60*24*time.Hour), *tok.ExpiresAt)
	assert.False(t, c.RequiresRefreshToken())
}

func TestRefreshGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	c := NewClient("app-id", "secret", "")
	c.graphURL = srv.URL

	_, err := c.Refresh(context.Background(), &entity.OAuthToken{AccessToken: "old"})
	assert.ErrorContains(t, err, "Error validating access token")
}

func TestFetchCampaigns(t *testing.T) {
	c := NewClient("app-id", "secret", "")
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows, err := c.FetchCampaigns(context.Background(), &entity.OAuthToken{}, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "m-3", rows[2].CampaignID)
	assert.Equal(t, "Carousel Ads", rows[2].CampaignName)
}
