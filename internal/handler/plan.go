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

// PlanHandler serves the plan catalog. Reads are public; writes are super
// admin only.
type PlanHandler struct {
	plans  usecase.PlanUsecase
	cfg    *config.Config
	logger *zerolog.Logger
}

// NewPlanHandler creates the plan handler.
func NewPlanHandler(plans usecase.PlanUsecase, cfg *config.Config, logger *zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		plans:  plans,
		cfg:    cfg,
		logger: logger,
	}
}

type createPlanPayload struct {
	Name               string   `json:"name"               validate:"required"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"              validate:"required,gt=0"`
	Duration           string   `json:"duration"           validate:"required,oneof=monthly yearly"`
	MaxNumberOfMembers int      `json:"maxNumberOfMembers" validate:"required,gt=0"`
	Features           []string `json:"features"`
	IsMostPopular      bool     `json:"isMostPopular"`
}

type updatePlanPayload struct {
	ID            string  `json:"id" validate:"required"`
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	IsMostPopular *bool   `json:"isMostPopular,omitempty"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// List returns plans. Anonymous callers see only active plans; a status query
// parameter is honored for the admin view.
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.PlanStatusActive
	}

	plans, err := h.plans.List(r.Context(), status)
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, plans)
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, plan)
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createPlanPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	plan, err := h.plans.Create(r.Context(), &model.SubscriptionPlan{
		Name:               payload.Name,
		Description:        payload.Description,
		Price:              payload.Price,
		Duration:           payload.Duration,
		MaxNumberOfMembers: payload.MaxNumberOfMembers,
		Features:           payload.Features,
		IsMostPopular:      payload.IsMostPopular,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, plan)
}

func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload updatePlanPayload
	if errs := httputil.DecodeAndValidate(r, &payload); errs != nil {
		httputil.RespondError(w, http.StatusBadRequest, errs...)
		return
	}

	plan, err := h.plans.Update(r.Context(), payload.ID, repository.UpdatePlanParams{
		Name:          payload.Name,
		Description:   payload.Description,
		IsMostPopular: payload.IsMostPopular,
		Status:        payload.Status,
	})
	if err != nil {
		respondError(w, h.logger, h.cfg, err)
		return
	}

	httputil.Respond(w, http.StatusOK, plan)
}
