package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/usecase"
)

// UserHandler serves the caller's own account endpoints.
type UserHandler struct {
	users    usecase.UserUsecase
	sessions usecase.SessionUsecase
	cfg      *config.Config
	logger   *zerolog.Logger
}

// NewUserHandler creates the user handler.
func NewUserHandler(
	users usecase.UserUsecase,
	sessions usecase.SessionUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

type updateProfilePayload struct {
	Name           *string        `json:"name,omitempty"`
	Email          *string        `json:"email,omitempty"          validate:"omitempty,email"`
	Mobile         *string        `json:"mobile,omitempty"`
	CountryISDCode *string        `json:"countryIsdCode,omitempty"`
	Address        *model.Address `json:"address,omitempty"`
	EmailService   *bool          `json:"emailService,omitempty"`
	SMSService     *bool          `json:"smsService,omitempty"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8"`
}

type verifyEmailPayload struct {
	Code string `json:"code" validate:"required"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.Respond(w, http.StatusOK, UserFromContext(r.Context()))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload updateProfilePayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), UserFromContext(r.Context()), usecase.UpdateProfileParams{
		Name:           payload.Name,
		Email:          payload.Email,
		Mobile:         payload.Mobile,
		CountryISDCode: payload.CountryISDCode,
		Address:        payload.Address,
		EmailService:   payload.EmailService,
		SMSService:     payload.SMSService,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload changePasswordPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	err := h.users.ChangePassword(r.Context(), UserFromContext(r.Context()), usecase.ChangePasswordParams{
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
		CurrentToken:    SessionFromContext(r.Context()).Token,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload verifyEmailPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.users.ConfirmEmailChange(r.Context(), payload.Code)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, user)
}

func (h *UserHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context(), UserFromContext(r.Context()).ID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, sessions)
}

// ExpireOtherSessions ends every session of the caller except the current
// one.
func (h *UserHandler) ExpireOtherSessions(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	session := SessionFromContext(r.Context())

	if err := h.sessions.ExpireOthers(r.Context(), user.ID.Hex(), session.Token); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}
