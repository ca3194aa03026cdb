package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/marketinghub/internal/entity"
)

func newConnectUC() (*ConnectPlatformUseCase, *MockAdPlatform, *MockTokenRepository) {
	google := &MockAdPlatform{name: "Google Ads", requiresRefresh: true}
	tokens := new(MockTokenRepository)
	uc := NewConnectPlatformUseCase(map[entity.Platform]AdPlatform{
		entity.PlatformGoogleAds: google,
	}, tokens)
	uc.Now = func() time.Time { return fixedNow }
	return uc, google, tokens
}

func TestConnectPlatform_AuthURL(t *testing.T) {
	uc, google, _ := newConnectUC()
	google.On("AuthCodeURL", "state-1").Return("https://accounts.example/auth?state=state-1")

	url, err := uc.AuthURL(entity.PlatformGoogleAds, "state-1")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-1")

	// Meta não está registrado neste use case.
	_, err = uc.AuthURL(entity.PlatformMetaAds, "state-1")
	assert.Equal(t, CodeInvalidPlatform, DomainErrorCode(err))
}

func TestConnectPlatform_CompleteStoresToken(t *testing.T) {
	uc, google, tokens := newConnectUC()
	google.On("Exchange", mock.Anything, "code-1").Return(&entity.OAuthToken{AccessToken: "at", RefreshToken: "rt"}, nil)
	tokens.On("Upsert", mock.Anything, mock.MatchedBy(func(tok *entity.OAuthToken) bool {
		return tok.UserID == "u1" && tok.Provider == entity.PlatformGoogleAds &&
			tok.AccessToken == "at" && tok.RefreshToken == "rt" && tok.UpdatedAt.Equal(fixedNow)
	})).Return(nil).Once()

	require.NoError(t, uc.Complete(context.Background(), "u1", entity.PlatformGoogleAds, "code-1"))
	tokens.AssertExpectations(t)
}

func TestConnectPlatform_CompleteFailures(t *testing.T) {
	uc, google, tokens := newConnectUC()

	err := uc.Complete(context.Background(), "u1", entity.PlatformGoogleAds, "")
	assert.Equal(t, CodeValidation, DomainErrorCode(err))

	google.On("Exchange", mock.Anything, "bad").Return(nil, errors.New("invalid_grant"))
	err = uc.Complete(context.Background(), "u1", entity.PlatformGoogleAds, "bad")
	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "TOKEN_EXCHANGE_FAILED", te.Code)
	assert.Equal(t, "Failed to connect Google Ads", te.Message)

	tokens.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestConnectPlatform_Status(t *testing.T) {
	uc, _, tokens := newConnectUC()
	expired := fixedNow.Add(-time.Hour)
	tokens.On("ListByUser", mock.Anything, "u1").Return([]entity.OAuthToken{
		{UserID: "u1", Provider: entity.PlatformGoogleAds, ExpiresAt: &expired},
	}, nil)

	statuses, err := uc.Status(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, entity.PlatformGoogleAds, statuses[0].Platform)
	assert.True(t, statuses[0].Connected)
	assert.True(t, statuses[0].Expired)

	assert.Equal(t, entity.PlatformMetaAds, statuses[1].Platform)
	assert.False(t, statuses[1].Connected)

	assert.Equal(t, "Google Ads", uc.DisplayName(entity.PlatformGoogleAds))
	assert.Equal(t, "meta_ads", uc.DisplayName(entity.PlatformMetaAds))
}
