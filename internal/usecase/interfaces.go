package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/marketinghub/internal/entity"
)

// Message é um email de saída.
type Message struct {
	To      string
	Subject string
	Body    string
}

// EmailTransport entrega uma mensagem. Deve devolver erro se o ctx expirar
// antes de o provedor aceitar a mensagem.
type EmailTransport interface {
	Send(ctx context.Context, msg Message) error
}

// SweepRequest pede a varredura de um tenant, em geral após mudança num lead.
type SweepRequest struct {
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	LeadID      string    `json:"lead_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

type SweepPublisher interface {
	PublishSweepRequest(ctx context.Context, req SweepRequest) error
}

// AutomationMetrics recebe os contadores do dispatcher. Pode ser nil.
type AutomationMetrics interface {
	RecordEmailSent(trigger string)
	RecordPair(result string)
	ObserveSweep(d time.Duration)
}

// AdPlatform é uma rede de anúncios: fluxo OAuth mais a fonte de métricas.
type AdPlatform interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*entity.OAuthToken, error)
	// Refresh devolve o token com novo access token e nova expiração.
	Refresh(ctx context.Context, token *entity.OAuthToken) (*entity.OAuthToken, error)
	FetchCampaigns(ctx context.Context, token *entity.OAuthToken, start, end time.Time) ([]entity.CampaignMetric, error)
	// RequiresRefreshToken indica que um token expirado só é renovado com
	// refresh token.
	RequiresRefreshToken() bool
	DisplayName() string
}

type CampaignCache interface {
	Get(ctx context.Context, key string) ([]entity.CampaignMetric, bool, error)
	Set(ctx context.Context, key string, rows []entity.CampaignMetric, ttl time.Duration) error
}
