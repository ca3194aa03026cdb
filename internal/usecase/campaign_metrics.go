package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/marketinghub/internal/entity"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 30
	DefaultCacheTTL  = time.Hour
)

type CampaignQuery struct {
	Platform  string
	StartDate string
	EndDate   string
}

// CampaignMetricsUseCase serve os números diários de campanha de uma
// plataforma conectada. Renova o token OAuth expirado e guarda o resultado
// em cache por (usuário, plataforma, período).
type CampaignMetricsUseCase struct {
	Platforms map[entity.Platform]AdPlatform
	TokenRepo entity.OAuthTokenRepositoryInterface
	DataRepo  entity.CampaignDataRepositoryInterface
	Cache     CampaignCache
	CacheTTL  time.Duration
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

func NewCampaignMetricsUseCase(
	platforms map[entity.Platform]AdPlatform,
	tokenRepo entity.OAuthTokenRepositoryInterface,
	dataRepo entity.CampaignDataRepositoryInterface,
	cache CampaignCache,
	logger logrus.FieldLogger,
) *CampaignMetricsUseCase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CampaignMetricsUseCase{
		Platforms: platforms,
		TokenRepo: tokenRepo,
		DataRepo:  dataRepo,
		Cache:     cache,
		CacheTTL:  DefaultCacheTTL,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (uc *CampaignMetricsUseCase) Execute(ctx context.Context, userID string, q CampaignQuery) ([]entity.CampaignMetric, error) {
	platform := entity.Platform(q.Platform)
	client, ok := uc.Platforms[platform]
	if !platform.Valid() || !ok {
		return nil, &DomainError{Code: CodeInvalidPlatform, Message: "Invalid platform"}
	}

	start, end, err := uc.dateRange(q)
	if err != nil {
		return nil, err
	}

	log := uc.Logger.WithFields(logrus.Fields{"user_id": userID, "platform": platform})
	key := cacheKey(userID, platform, start, end)

	if uc.Cache != nil {
		rows, hit, err := uc.Cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("campaign cache read failed")
		} else if hit {
			return rows, nil
		}
	}

	token, err := uc.TokenRepo.FindByProvider(ctx, userID, platform)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeNotConnected, Message: client.DisplayName() + " not connected"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load oauth token", Err: err}
	}

	if token.Expired(uc.now()) {
		token, err = uc.refresh(ctx, client, token)
		if err != nil {
			return nil, err
		}
	}

	rows, err := client.FetchCampaigns(ctx, token, start, end)
	if err != nil {
		return nil, &TechnicalError{Code: "PROVIDER_ERROR", Message: "Failed to fetch campaign data", Err: err}
	}

	if uc.DataRepo != nil {
		if err := uc.DataRepo.SaveBatch(ctx, userID, platform, rows, uc.now()); err != nil {
			log.WithError(err).Error("failed to store campaign data")
		}
	}
	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, key, rows, uc.cacheTTL()); err != nil {
			log.WithError(err).Warn("campaign cache write failed")
		}
	}

	return rows, nil
}

func (uc *CampaignMetricsUseCase) Summary(ctx context.Context, userID string, q CampaignQuery) (*entity.CampaignSummary, error) {
	rows, err := uc.Execute(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	s := entity.Summarize(rows)
	return &s, nil
}

func (uc *CampaignMetricsUseCase) refresh(ctx context.Context, client AdPlatform, token *entity.OAuthToken) (*entity.OAuthToken, error) {
	if client.RequiresRefreshToken() && token.RefreshToken == "" {
		return nil, &DomainError{
			Code:    CodeTokenExpired,
			Message: client.DisplayName() + " token expired and no refresh token available",
		}
	}

	fresh, err := client.Refresh(ctx, token)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_REFRESH_FAILED", Message: "Failed to refresh " + client.DisplayName() + " token", Err: err}
	}

	token.AccessToken = fresh.AccessToken
	token.ExpiresAt = fresh.ExpiresAt
	if fresh.RefreshToken != "" {
		token.RefreshToken = fresh.RefreshToken
	}
	token.UpdatedAt = uc.now()

	if err := uc.TokenRepo.Upsert(ctx, token); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to store refreshed token", Err: err}
	}
	return token, nil
}

// dateRange aplica o padrão: últimos 30 dias até hoje.
func (uc *CampaignMetricsUseCase) dateRange(q CampaignQuery) (time.Time, time.Time, error) {
	today := civilDate(uc.now(), time.UTC)

	end := today
	if q.EndDate != "" {
		t, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, &DomainError{Code: CodeInvalidDate, Message: "endDate must be YYYY-MM-DD"}
		}
		end = t
	}

	start := today.AddDate(0, 0, -defaultRangeDays)
	if q.StartDate != "" {
		t, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, &DomainError{Code: CodeInvalidDate, Message: "startDate must be YYYY-MM-DD"}
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, &DomainError{Code: CodeInvalidDate, Message: "endDate must not be before startDate"}
	}
	return start, end, nil
}

func (uc *CampaignMetricsUseCase) cacheTTL() time.Duration {
	if uc.CacheTTL <= 0 {
		return DefaultCacheTTL
	}
	return uc.CacheTTL
}

func (uc *CampaignMetricsUseCase) now() time.Time {
	if uc.Now == nil {
		return time.Now().UTC()
	}
	return uc.Now().UTC()
}

func cacheKey(userID string, platform entity.Platform, start, end time.Time) string {
	return fmt.Sprintf("campaigns:%s:%s:%s:%s", userID, platform, start.Format(dateLayout), end.Format(dateLayout))
}
