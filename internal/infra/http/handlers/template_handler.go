package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

type TemplateHandler struct {
	TemplateUC *usecase.TemplateUseCase
	Logger     logrus.FieldLogger
}

func NewTemplateHandler(uc *usecase.TemplateUseCase, logger logrus.FieldLogger) *TemplateHandler {
	return &TemplateHandler{TemplateUC: uc, Logger: logger}
}

func (h *TemplateHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	templates, err := h.TemplateUC.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input usecase.TemplateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.TemplateUC.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input usecase.TemplateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.TemplateUC.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.TemplateUC.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeSuccess(w)
}
