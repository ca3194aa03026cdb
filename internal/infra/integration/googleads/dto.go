package googleads

import "github.com/xavierca1/marketinghub/internal/infra/integration/sampledata"

const (
	AdwordsScope = "https://www.googleapis.com/auth/adwords"
	displayName  = "Google Ads"
)

var campaigns = []sampledata.Campaign{
	{ID: "g-1", Name: "Brand Awareness"},
	{ID: "g-2", Name: "Product Launch"},
	{ID: "g-3", Name: "Retargeting"},
}

var metricRanges = sampledata.Ranges{
	SpendMin: 50, SpendSpan: 100,
	ClicksMin: 50, ClicksSpan: 200,
	ImpressionsMin: 1000, ImpressionsSpan: 5000,
	ConversionsSpan: 20,
}
