package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/notify"
	"github.com/taskport/taskport-api/internal/usecase"
)

// NotificationHandler serves stored notifications, the live WebSocket feed,
// and the shared-secret email/SMS dispatch endpoints.
type NotificationHandler struct {
	notifications usecase.NotificationUsecase
	hub           *notify.Hub
	cfg           *config.Config
	logger        *zerolog.Logger
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(
	notifications usecase.NotificationUsecase,
	hub *notify.Hub,
	cfg *config.Config,
	logger *zerolog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		hub:           hub,
		cfg:           cfg,
		logger:        logger,
	}
}

type sendEmailPayload struct {
	Emails  []string `json:"emails"  validate:"required,min=1,dive,email"`
	Subject string   `json:"subject" validate:"required"`
	Body    string   `json:"body"    validate:"required"`
}

type sendSMSPayload struct {
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	notifications, err := h.notifications.List(r.Context(), user.ID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, notifications)
}

// Live upgrades to a WebSocket and streams the caller's notifications until
// the client disconnects.
func (h *NotificationHandler) Live(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	h.hub.Attach(w, r, user.ID.Hex())
}

// SendEmail is the service-to-service email dispatch endpoint, guarded by the
// private_key gate.
func (h *NotificationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var payload sendEmailPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	if err := h.notifications.SendEmail(r.Context(), payload.Emails, payload.Subject, payload.Body); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}

// SendSMS is the service-to-service SMS dispatch endpoint, guarded by the
// private_key gate.
func (h *NotificationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var payload sendSMSPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	if err := h.notifications.SendSMS(r.Context(), payload.Email, payload.Message); err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusNoContent, nil)
}
