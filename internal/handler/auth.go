package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/usecase"
)

// AuthHandler serves registration, activation, and login endpoints.
type AuthHandler struct {
	auth   usecase.AuthUsecase
	cfg    *config.Config
	logger *zerolog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth usecase.AuthUsecase, cfg *config.Config, logger *zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cfg:    cfg,
		logger: logger,
	}
}

type registerPayload struct {
	OrganizationName string        `json:"organizationName" validate:"required"`
	Address          model.Address `json:"address"`
	Name             string        `json:"name"             validate:"required"`
	Email            string        `json:"email"            validate:"required,email"`
	Password         string        `json:"password"         validate:"required,min=8"`
	IsPolicyAccepted bool          `json:"isPolicyAccepted"`
}

type loginPayload struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type socialLoginPayload struct {
	Provider string `json:"provider" validate:"required,oneof=google facebook"`
	Token    string `json:"token"    validate:"required"`
}

type memberRegistrationPayload struct {
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type passwordResetRequestPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetPayload struct {
	Password string `json:"password" validate:"required,min=8"`
}

type activatePayload struct {
	Code string `json:"code" validate:"required"`
}

// sessionResponse is the body returned by every login-like endpoint.
type sessionResponse struct {
	AccessCode string      `json:"accessCode"`
	User       *model.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.auth.Register(r.Context(), usecase.RegisterParams{
		OrganizationName: payload.OrganizationName,
		Address:          payload.Address,
		Name:             payload.Name,
		Email:            payload.Email,
		Password:         payload.Password,
		IsPolicyAccepted: payload.IsPolicyAccepted,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, user)
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var payload activatePayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.auth.Activate(r.Context(), payload.Code)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	session, user, err := h.auth.Login(r.Context(), usecase.LoginParams{
		Email:     payload.Email,
		Password:  payload.Password,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, sessionResponse{
		AccessCode: session.Token,
		User:       user,
	})
}

func (h *AuthHandler) SocialLogin(w http.ResponseWriter, r *http.Request) {
	var payload socialLoginPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	session, user, err := h.auth.SocialLogin(r.Context(), usecase.SocialLoginParams{
		Provider:  payload.Provider,
		Token:     payload.Token,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, sessionResponse{
		AccessCode: session.Token,
		User:       user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	if err := h.auth.Logout(r.Context(), session.Token); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) CompleteMemberRegistration(w http.ResponseWriter, r *http.Request) {
	var payload memberRegistrationPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.auth.CompleteMemberRegistration(r.Context(), usecase.MemberRegistrationParams{
		Code:     chi.URLParam(r, "id"),
		Name:     payload.Name,
		Password: payload.Password,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, user)
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload passwordResetRequestPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload passwordResetPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	user, err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "code"), payload.Password)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, user)
}
