package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/infra/http/middleware"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

type CampaignHandler struct {
	CampaignUC *usecase.CampaignMetricsUseCase
	Logger     logrus.FieldLogger
}

func NewCampaignHandler(uc *usecase.CampaignMetricsUseCase, logger logrus.FieldLogger) *CampaignHandler {
	return &CampaignHandler{CampaignUC: uc, Logger: logger}
}

func (h *CampaignHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
}

func query(r *http.Request) usecase.CampaignQuery {
	q := r.URL.Query()
	return usecase.CampaignQuery{
		Platform:  q.Get("platform"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := query(r)
	rows, err := h.CampaignUC.Execute(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, q.Platform, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *CampaignHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := query(r)
	summary, err := h.CampaignUC.Summary(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, q.Platform, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *CampaignHandler) fail(w http.ResponseWriter, r *http.Request, platform string, err error) {
	var te *usecase.TechnicalError
	if errors.As(err, &te) && (te.Code == "PROVIDER_ERROR" || te.Code == "TOKEN_REFRESH_FAILED") {
		middleware.RecordIntegrationError(platform)
	}
	writeError(w, h.Logger, r, err)
}
