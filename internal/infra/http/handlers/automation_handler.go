package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

type AutomationHandler struct {
	AutomationUC *usecase.AutomationUseCase
	TriggerUC    *usecase.TriggerAutomationUseCase
	SweepUC      *usecase.SweepAutomationsUseCase
	Logger       logrus.FieldLogger
	Now          func() time.Time
}

func NewAutomationHandler(
	automationUC *usecase.AutomationUseCase,
	triggerUC *usecase.TriggerAutomationUseCase,
	sweepUC *usecase.SweepAutomationsUseCase,
	logger logrus.FieldLogger,
) *AutomationHandler {
	return &AutomationHandler{
		AutomationUC: automationUC,
		TriggerUC:    triggerUC,
		SweepUC:      sweepUC,
		Logger:       logger,
		Now:          time.Now,
	}
}

func (h *AutomationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/", h.Trigger)
	r.Post("/sweep", h.Sweep)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *AutomationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rules, err := h.AutomationUC.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, rules)
}

func (h *AutomationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input usecase.AutomationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.AutomationUC.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

func (h *AutomationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input usecase.AutomationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.AutomationUC.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (h *AutomationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.AutomationUC.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeSuccess(w)
}

// Trigger (PATCH /api/email-automations) força o envio de uma regra para um lead.
func (h *AutomationHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input usecase.TriggerAutomationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := h.TriggerUC.Execute(r.Context(), userID, input); err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeSuccess(w)
}

// Sweep roda a varredura só com as regras e os leads do próprio usuário.
func (h *AutomationHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := h.SweepUC.ExecuteTenant(r.Context(), userID, h.Now())
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}
