package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/entity"
	"github.com/xavierca1/marketinghub/internal/infra/http/middleware"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

const stateCookieMaxAge = 10 * 60 // 10 minutos

// pathPlatforms mapeia o segmento da URL para o provider gravado.
var pathPlatforms = map[string]entity.Platform{
	"google": entity.PlatformGoogleAds,
	"meta":   entity.PlatformMetaAds,
}

type OAuthHandler struct {
	ConnectUC *usecase.ConnectPlatformUseCase
	SiteURL   string
	Logger    logrus.FieldLogger
}

func NewOAuthHandler(uc *usecase.ConnectPlatformUseCase, siteURL string, logger logrus.FieldLogger) *OAuthHandler {
	return &OAuthHandler{ConnectUC: uc, SiteURL: strings.TrimRight(siteURL, "/"), Logger: logger}
}

func (h *OAuthHandler) Routes(r chi.Router) {
	r.Get("/status", h.Status)
	r.Get("/{platform}/connect", h.Connect)
	r.Get("/{platform}/callback", h.Callback)
}

func stateCookieName(p entity.Platform) string {
	return string(p) + "_oauth_state"
}

func (h *OAuthHandler) platform(w http.ResponseWriter, r *http.Request) (entity.Platform, bool) {
	p, ok := pathPlatforms[chi.URLParam(r, "platform")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid platform", Code: usecase.CodeInvalidPlatform})
	}
	return p, ok
}

// Connect guarda um state aleatório num cookie e redireciona para o consentimento.
func (h *OAuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Redirect(w, r, h.SiteURL+"/sign-in", http.StatusFound)
		return
	}
	platform, ok := h.platform(w, r)
	if !ok {
		return
	}

	state := uuid.New().String()
	authURL, err := h.ConnectUC.AuthURL(platform, state)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName(platform),
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.SiteURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Redirect(w, r, h.SiteURL+"/sign-in", http.StatusFound)
		return
	}
	platform, ok := h.platform(w, r)
	if !ok {
		return
	}
	name := h.ConnectUC.DisplayName(platform)

	// O cookie de state é de uso único.
	stored := ""
	if c, err := r.Cookie(stateCookieName(platform)); err == nil {
		stored = c.Value
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName(platform), Value: "", Path: "/", MaxAge: -1})

	q := r.URL.Query()
	if q.Get("error") != "" {
		h.redirect(w, r, "error", name+" authentication failed")
		return
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" || state != stored {
		h.redirect(w, r, "error", "Invalid authentication state")
		return
	}

	if err := h.ConnectUC.Complete(r.Context(), userID, platform, code); err != nil {
		h.Logger.WithFields(logrus.Fields{"user_id": userID, "platform": platform}).WithError(err).Error("oauth callback failed")
		middleware.RecordIntegrationError(string(platform))

		msg := "Failed to connect " + name
		var de *usecase.DomainError
		if errors.As(err, &de) {
			msg = de.Message
		}
		h.redirect(w, r, "error", msg)
		return
	}

	h.redirect(w, r, "success", name+" connected successfully")
}

func (h *OAuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	statuses, err := h.ConnectUC.Status(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, statuses)
}

func (h *OAuthHandler) redirect(w http.ResponseWriter, r *http.Request, key, msg string) {
	http.Redirect(w, r, h.SiteURL+"/dashboard?"+key+"="+url.QueryEscape(msg), http.StatusFound)
}
