package metaads

import "github.com/xavierca1/marketinghub/internal/infra/integration/sampledata"

const (
	graphVersion = "v18.0"
	displayName  = "Meta Ads"
)

var scopes = []string{"ads_management", "pages_read_engagement", "business_management"}

// tokenResponse é a resposta do /oauth/access_token do Graph.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

var campaigns = []sampledata.Campaign{
	{ID: "m-1", Name: "Facebook Engagement"},
	{ID: "m-2", Name: "Instagram Stories"},
	{ID: "m-3", Name: "Carousel Ads"},
}

var metricRanges = sampledata.Ranges{
	SpendMin: 40, SpendSpan: 80,
	ClicksMin: 40, ClicksSpan: 150,
	ImpressionsMin: 800, ImpressionsSpan: 4000,
	ConversionsSpan: 15,
}
