// Package server assembles the HTTP surface: REST routes, the GraphQL
// endpoint, and the operational endpoints.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskport/taskport-api/internal/graphqlapi"
	"github.com/taskport/taskport-api/internal/handler"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/obs"
)

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Member        *handler.MemberHandler
	Organization  *handler.OrganizationHandler
	Billing       *handler.BillingHandler
	Plan          *handler.PlanHandler
	Contact       *handler.ContactHandler
	Group         *handler.GroupHandler
	Notification  *handler.NotificationHandler
	GraphQL       *graphqlapi.Handler
	Authenticator *handler.Authenticator
}

// NewRouter builds the full route tree.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", obs.Handler())

	auth := h.Authenticator

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/login/social", h.Auth.SocialLogin)
		r.Post("/register", h.Auth.Register)
		r.Post("/register/{id}", h.Auth.CompleteMemberRegistration)
		r.Post("/resetPassword", h.Auth.RequestPasswordReset)
		r.Post("/resetPassword/{code}", h.Auth.ResetPassword)
		r.Post("/user/activate", h.Auth.Activate)
		r.Post("/user/verifyEmail", h.User.VerifyEmail)

		r.Get("/plans", h.Plan.List)
		r.Get("/plans/{id}", h.Plan.Get)

		// Bearer-gated routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth())

			r.Get("/logout", h.Auth.Logout)

			r.Get("/user", h.User.Get)
			r.Put("/user", h.User.Update)
			r.Put("/user/password", h.User.ChangePassword)
			r.Get("/user/sessions", h.User.ListSessions)
			r.Put("/user/sessions", h.User.ExpireOtherSessions)

			r.Get("/members", h.Member.List)
			r.Get("/members/{id}", h.Member.Get)
			r.Post("/members", h.Member.Invite)
			r.Put("/members", h.Member.Update)

			r.Get("/contacts", h.Contact.List)
			r.Get("/contacts/relationships", h.Contact.ListRelationships)
			r.Get("/contacts/{id}", h.Contact.Get)
			r.Post("/contacts", h.Contact.Create)
			r.Put("/contacts", h.Contact.Update)
			r.Delete("/contacts/{id}", h.Contact.Delete)

			r.Get("/groups", h.Group.List)
			r.Get("/groups/{id}", h.Group.Get)
			r.Post("/groups", h.Group.Create)
			r.Put("/groups", h.Group.Update)
			r.Delete("/groups/{id}", h.Group.Delete)

			r.Get("/subscription", h.Billing.GetSubscription)

			r.Get("/notification", h.Notification.List)
			r.Get("/notification/live", h.Notification.Live)

			r.Method(http.MethodPost, "/graphql", h.GraphQL)
		})

		// Account admin routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(model.PermissionAccountAdmin))

			r.Put("/organizations", h.Organization.Update)
			r.Put("/subscription/cancel", h.Billing.CancelSubscription)
			r.Put("/subscription/change/{id}", h.Billing.ChangePlan)

			r.Get("/billing/invoices", h.Billing.ListInvoices)
			r.Get("/billing/invoices/upcoming", h.Billing.UpcomingInvoice)
			r.Get("/billing/paymentMethods", h.Billing.ListCards)
			r.Post("/billing/paymentMethods", h.Billing.AddCard)
			r.Put("/billing/paymentMethods", h.Billing.UpdateCard)
		})

		r.With(auth.RequireAuth(model.PermissionAccountAdmin, model.PermissionSuperAdmin)).
			Get("/organizations/{id}", h.Organization.Get)

		// Super admin routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(model.PermissionSuperAdmin))

			r.Get("/organizations", h.Organization.List)
			r.Post("/plans", h.Plan.Create)
			r.Put("/plans", h.Plan.Update)
		})

		// Service-to-service routes behind the shared secret.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePrivateKey)

			r.Post("/notification/email", h.Notification.SendEmail)
			r.Post("/notification/sms", h.Notification.SendSMS)
		})
	})

	return r
}
