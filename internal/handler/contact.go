package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/usecase"
)

// ContactHandler serves the caller's contact directory.
type ContactHandler struct {
	contacts usecase.ContactUsecase
	cfg      *config.Config
	logger   *zerolog.Logger
}

// NewContactHandler creates the contact handler.
func NewContactHandler(contacts usecase.ContactUsecase, cfg *config.Config, logger *zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		cfg:      cfg,
		logger:   logger,
	}
}

type createContactPayload struct {
	ContactEmail string   `json:"contactEmail" validate:"required,email"`
	Relationship string   `json:"relationship,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

type updateContactPayload struct {
	ID           string   `json:"id" validate:"required"`
	ContactEmail *string  `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Relationship *string  `json:"relationship,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contacts, err := h.contacts.List(r.Context(), user.ID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, contacts)
}

func (h *ContactHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	relationships, err := h.contacts.ListRelationships(r.Context(), user.ID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, relationships)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contact, err := h.contacts.Get(r.Context(), chi.URLParam(r, "id"), user.ID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload createContactPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	contact, err := h.contacts.Create(r.Context(), user, usecase.CreateContactParams{
		ContactEmail: payload.ContactEmail,
		Relationship: payload.Relationship,
		Aliases:      payload.Aliases,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload updateContactPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	contact, err := h.contacts.Update(r.Context(), payload.ID, user.ID.Hex(), repository.UpdateContactParams{
		ContactEmail: payload.ContactEmail,
		Relationship: payload.Relationship,
		Aliases:      payload.Aliases,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id"), user.ID.Hex()); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}
