package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignMetric são os números de uma campanha em um dia.
type CampaignMetric struct {
	CampaignID   string          `json:"campaign_id"`
	CampaignName string          `json:"campaign_name"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Spend        decimal.Decimal `json:"spend"`
	Clicks       int64           `json:"clicks"`
	Impressions  int64           `json:"impressions"`
	Conversions  int64           `json:"conversions"`
	CPC          decimal.Decimal `json:"cpc"`
}

type CampaignSummary struct {
	TotalSpend       decimal.Decimal `json:"total_spend"`
	TotalClicks      int64           `json:"total_clicks"`
	TotalImpressions int64           `json:"total_impressions"`
	TotalConversions int64           `json:"total_conversions"`
	AvgCPC           decimal.Decimal `json:"avg_cpc"`
	CTR              decimal.Decimal `json:"ctr"`             // percentual
	ConversionRate   decimal.Decimal `json:"conversion_rate"` // percentual
}

var hundred = decimal.NewFromInt(100)

func Summarize(rows []CampaignMetric) CampaignSummary {
	var s CampaignSummary
	for _, r := range rows {
		s.TotalSpend = s.TotalSpend.Add(r.Spend)
		s.TotalClicks += r.Clicks
		s.TotalImpressions += r.Impressions
		s.TotalConversions += r.Conversions
	}

	if s.TotalClicks > 0 {
		clicks := decimal.NewFromInt(s.TotalClicks)
		s.AvgCPC = s.TotalSpend.Div(clicks).Round(2)
		s.ConversionRate = decimal.NewFromInt(s.TotalConversions).Mul(hundred).Div(clicks).Round(2)
	}
	if s.TotalImpressions > 0 {
		s.CTR = decimal.NewFromInt(s.TotalClicks).Mul(hundred).Div(decimal.NewFromInt(s.TotalImpressions)).Round(2)
	}
	s.TotalSpend = s.TotalSpend.Round(2)
	return s
}

type CampaignDataRepositoryInterface interface {
	SaveBatch(ctx context.Context, userID string, platform Platform, rows []CampaignMetric, fetchedAt time.Time) error
}
