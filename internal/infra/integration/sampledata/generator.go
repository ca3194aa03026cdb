// Package sampledata gera métricas de campanha sintéticas enquanto as APIs
// de relatório das plataformas não estão ligadas.
package sampledata

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/marketinghub/internal/entity"
)

type Campaign struct {
	ID   string
	Name string
}

// Faixas são [min, min+span) por métrica.
type Ranges struct {
	SpendMin, SpendSpan             float64
	ClicksMin, ClicksSpan           int64
	ImpressionsMin, ImpressionsSpan int64
	ConversionsSpan                 int64
}

// Days devolve quantos dias [start, end) cobre, arredondando para cima.
func Days(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// Generate devolve uma linha por campanha por dia, a partir de start.
func Generate(campaigns []Campaign, r Ranges, start, end time.Time) []entity.CampaignMetric {
	days := Days(start, end)
	if days <= 0 {
		return []entity.CampaignMetric{}
	}

	out := make([]entity.CampaignMetric, 0, days*len(campaigns))
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")

		for _, c := range campaigns {
			spend := decimal.NewFromFloat(rand.Float64()*r.SpendSpan + r.SpendMin).Round(2)
			clicks := rand.Int64N(r.ClicksSpan) + r.ClicksMin

			out = append(out, entity.CampaignMetric{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Date:         date,
				Spend:        spend,
				Clicks:       clicks,
				Impressions:  rand.Int64N(r.ImpressionsSpan) + r.ImpressionsMin,
				Conversions:  rand.Int64N(r.ConversionsSpan),
				CPC:          spend.Div(decimal.NewFromInt(clicks)).Round(2),
			})
		}
	}
	return out
}
