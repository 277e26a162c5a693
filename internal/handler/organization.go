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

// OrganizationHandler serves organization endpoints.
type OrganizationHandler struct {
	orgs   usecase.OrganizationUsecase
	cfg    *config.Config
	logger *zerolog.Logger
}

// NewOrganizationHandler creates the organization handler.
func NewOrganizationHandler(
	orgs usecase.OrganizationUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *OrganizationHandler {
	return &OrganizationHandler{
		orgs:   orgs,
		cfg:    cfg,
		logger: logger,
	}
}

type updateOrganizationPayload struct {
	Name           *string        `json:"name,omitempty"`
	Address        *model.Address `json:"address,omitempty"`
	PrimaryAdminID *string        `json:"primaryAdmin,omitempty"`
}

// List returns every organization with its member count. Super admins only.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orgs.ListWithMemberCounts(r.Context())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, summaries)
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	// Account admins only ever see their own organization.
	if !caller.Permissions.IsSuperAdmin && id != caller.OrganizationID.Hex() {
		httputil.RespondError(w, http.StatusForbidden, "Permission denied")
		return
	}

	org, err := h.orgs.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, org)
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	var payload updateOrganizationPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	org, err := h.orgs.Update(r.Context(), caller.OrganizationID.Hex(), repository.UpdateOrganizationParams{
		Name:           payload.Name,
		Address:        payload.Address,
		PrimaryAdminID: payload.PrimaryAdminID,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, org)
}
