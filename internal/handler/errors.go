package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/usecase"
)

// respondError maps usecase errors to HTTP status codes and writes the error
// envelope. Unrecognized errors become a 500 whose message is echoed only
// outside production.
func respondError(w http.ResponseWriter, logger *zerolog.Logger, cfg *config.Config, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrSessionNotFound):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, usecase.ErrAccountNotVerified),
		errors.Is(err, usecase.ErrRegistrationIncomplete),
		errors.Is(err, usecase.ErrAccountDeactivated):
		httputil.RespondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, usecase.ErrUserAlreadyExists):
		httputil.RespondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrOrganizationNotFound),
		errors.Is(err, usecase.ErrPlanNotFound),
		errors.Is(err, usecase.ErrContactNotFound),
		errors.Is(err, usecase.ErrGroupNotFound),
		errors.Is(err, usecase.ErrSMSNotAvailable):
		httputil.RespondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, usecase.ErrCodeInvalid),
		errors.Is(err, usecase.ErrPolicyNotAccepted),
		errors.Is(err, usecase.ErrUnknownAuthProvider),
		errors.Is(err, usecase.ErrMemberLimitExceeded),
		errors.Is(err, usecase.ErrTooManyMembersForPlan),
		errors.Is(err, usecase.ErrNoSubscription),
		errors.Is(err, usecase.ErrNoPaymentMethod):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())

	case payment.IsUserFixable(err):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())

	default:
		logger.Error().Err(err).Msg("request failed")

		message := "internal server error"
		if !cfg.IsProduction() {
			message = err.Error()
		}
		httputil.RespondError(w, http.StatusInternalServerError, message)
	}
}
