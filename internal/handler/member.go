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

// MemberHandler serves organization membership endpoints.
type MemberHandler struct {
	members usecase.MemberUsecase
	users   usecase.UserUsecase
	cfg     *config.Config
	logger  *zerolog.Logger
}

// NewMemberHandler creates the member handler.
func NewMemberHandler(
	members usecase.MemberUsecase,
	users usecase.UserUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *MemberHandler {
	return &MemberHandler{
		members: members,
		users:   users,
		cfg:     cfg,
		logger:  logger,
	}
}

type inviteMembersPayload struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

// updateMemberPayload is the typed member update: only these fields can
// change, and the super-admin flag is not among them.
type updateMemberPayload struct {
	ID           string   `json:"id" validate:"required"`
	Name         *string  `json:"name,omitempty"`
	RoleTitles   []string `json:"roleTitles,omitempty"`
	AccountAdmin *bool    `json:"isAccountAdmin,omitempty"`
	Status       *string  `json:"status,omitempty" validate:"omitempty,oneof=active deactivated"`
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var statuses []string
	if status := r.URL.Query().Get("status"); status != "" {
		statuses = []string{status}
	}

	members, err := h.members.List(r.Context(), user.OrganizationID.Hex(), statuses)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	member, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	// Members are only visible inside their own organization.
	if member.OrganizationID != caller.OrganizationID && !caller.Permissions.IsSuperAdmin {
		respondError(w, h.logger, h.cfg, usecase.ErrUserNotFound)
		return
	}

	httputil.Respond(w, http.StatusOK, member)
}

func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload inviteMembersPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	invited, err := h.members.Invite(r.Context(), usecase.InviteMembersParams{
		OrganizationID: user.OrganizationID.Hex(),
		InvitedBy:      user,
		Emails:         payload.Emails,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, invited)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	var payload updateMemberPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	member, err := h.users.Get(r.Context(), payload.ID)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}
	if member.OrganizationID != caller.OrganizationID && !caller.Permissions.IsSuperAdmin {
		respondError(w, h.logger, h.cfg, usecase.ErrUserNotFound)
		return
	}

	updated := member
	if payload.Name != nil || payload.RoleTitles != nil || payload.AccountAdmin != nil {
		updated, err = h.members.Update(r.Context(), payload.ID, repository.UpdateUserParams{
			Name:         payload.Name,
			RoleTitles:   payload.RoleTitles,
			AccountAdmin: payload.AccountAdmin,
		})
		if err != nil {
			respondError(w, h.logger, h.cfg, err)
			return
		}
	}

	// Status changes go through the transition paths so deactivation also
	// expires the member's sessions.
	if payload.Status != nil {
		switch *payload.Status {
		case model.UserStatusDeactivated:
			updated, err = h.members.Deactivate(r.Context(), payload.ID)
		case model.UserStatusActive:
			updated, err = h.members.Reactivate(r.Context(), payload.ID)
		}
		if err != nil {
			respondError(w, h.logger, h.cfg, err)
			return
		}
	}

	httputil.Respond(w, http.StatusOK, updated)
}
