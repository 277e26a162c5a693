package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/usecase"
)

// GroupHandler serves group endpoints.
type GroupHandler struct {
	groups usecase.GroupUsecase
	cfg    *config.Config
	logger *zerolog.Logger
}

// NewGroupHandler creates the group handler.
func NewGroupHandler(groups usecase.GroupUsecase, cfg *config.Config, logger *zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		cfg:    cfg,
		logger: logger,
	}
}

type createGroupPayload struct {
	Name    string              `json:"name" validate:"required"`
	Members []model.GroupMember `json:"members,omitempty"`
}

type updateGroupPayload struct {
	ID      string              `json:"id" validate:"required"`
	Name    *string             `json:"name,omitempty"`
	Members []model.GroupMember `json:"members,omitempty"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	groups, err := h.groups.List(r.Context(), user.OrganizationID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	group, err := h.groups.Get(r.Context(), chi.URLParam(r, "id"), user.OrganizationID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, group)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload createGroupPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	group, err := h.groups.Create(r.Context(), user, usecase.CreateGroupParams{
		Name:    payload.Name,
		Members: payload.Members,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload updateGroupPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	group, err := h.groups.Update(r.Context(), payload.ID, user.OrganizationID.Hex(), repository.UpdateGroupParams{
		Name:    payload.Name,
		Members: payload.Members,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.groups.Delete(r.Context(), chi.URLParam(r, "id"), user.OrganizationID.Hex()); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}
