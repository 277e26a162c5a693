package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/usecase"
)

// BillingHandler serves subscription and payment method endpoints.
type BillingHandler struct {
	billing usecase.BillingUsecase
	orgs    usecase.OrganizationUsecase
	cfg     *config.Config
	logger  *zerolog.Logger
}

// NewBillingHandler creates the billing handler.
func NewBillingHandler(
	billing usecase.BillingUsecase,
	orgs usecase.OrganizationUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *BillingHandler {
	return &BillingHandler{
		billing: billing,
		orgs:    orgs,
		cfg:     cfg,
		logger:  logger,
	}
}

type changePlanPayload struct {
	CardToken string `json:"cardToken,omitempty"`
}

type cancelSubscriptionPayload struct {
	Strategy string `json:"strategy" validate:"required,oneof=immediately period_end"`
}

type addCardPayload struct {
	CardToken string `json:"cardToken" validate:"required"`
}

type updateCardPayload struct {
	CardID         string `json:"cardId" validate:"required"`
	ExpMonth       string `json:"expMonth,omitempty"`
	ExpYear        string `json:"expYear,omitempty"`
	CardHolderName string `json:"cardHolderName,omitempty"`
	IsDefault      bool   `json:"isDefault,omitempty"`
}

// subscriptionResponse is the caller-visible view of the organization's
// subscription.
type subscriptionResponse struct {
	PlanID       string  `json:"planId,omitempty"`
	PlanName     string  `json:"planName,omitempty"`
	BilledAmount float64 `json:"billedAmount"`
}

func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	org, err := h.orgs.Get(r.Context(), user.OrganizationID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	resp := subscriptionResponse{BilledAmount: org.BilledAmount}
	if !org.PlanID.IsZero() {
		resp.PlanID = org.PlanID.Hex()
	}
	if org.PlanSnapshot != nil {
		resp.PlanName = org.PlanSnapshot.Name
	}

	httputil.Respond(w, http.StatusOK, resp)
}

func (h *BillingHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload changePlanPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	org, err := h.billing.ChangePlan(r.Context(), usecase.ChangePlanParams{
		OrganizationID: user.OrganizationID.Hex(),
		PlanID:         chi.URLParam(r, "id"),
		CardToken:      payload.CardToken,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, org)
}

func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload cancelSubscriptionPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	result, err := h.billing.Cancel(r.Context(), user.OrganizationID.Hex(), payload.Strategy == "immediately")
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, result)
}

func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	limit := 12
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	invoices, err := h.billing.ListInvoices(r.Context(), user.OrganizationID.Hex(), limit)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, invoices)
}

func (h *BillingHandler) UpcomingInvoice(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	invoice, err := h.billing.UpcomingInvoice(r.Context(), user.OrganizationID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, invoice)
}

func (h *BillingHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	cards, err := h.billing.ListCards(r.Context(), user.OrganizationID.Hex())
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, cards)
}

func (h *BillingHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload addCardPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	card, err := h.billing.AddCard(r.Context(), user.OrganizationID.Hex(), payload.CardToken)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, card)
}

func (h *BillingHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload updateCardPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	card, err := h.billing.UpdateCard(r.Context(), user.OrganizationID.Hex(), payment.CardUpdate{
		CardID:         payload.CardID,
		ExpMonth:       payload.ExpMonth,
		ExpYear:        payload.ExpYear,
		CardHolderName: payload.CardHolderName,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	if payload.IsDefault {
		if err := h.billing.SetDefaultCard(r.Context(), user.OrganizationID.Hex(), payload.CardID); err != nil {
			respondError(w, h.logger, h.cfg, err)
			return
		}
		card.IsDefault = true
	}

	httputil.Respond(w, http.StatusOK, card)
}
