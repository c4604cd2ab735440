package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/lottery-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware лотерейного сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)

			r.Get("/plans", h.GetPlans)
			r.Get("/plans/{planID}/sold", h.GetSoldNumbers)

			r.Post("/tokens", h.PurchaseTokens)
			r.Get("/tokens", h.GetTokens)
			r.Get("/winners", h.GetWinners)

			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetTransactions)
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)

			r.Get("/referrals", h.GetReferrals)
			r.Get("/methods", h.GetPaymentMethods)
			r.Get("/support", h.GetSupport)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)
		r.Use(h.requireAdmin)

		r.Get("/users", h.AdminGetUsers)
		r.Delete("/users/{userID}", h.AdminDeleteUser)

		r.Get("/plans", h.AdminGetPlans)
		r.Post("/plans", h.AdminCreatePlan)
		r.Put("/plans/{planID}", h.AdminUpdatePlan)
		r.Delete("/plans/{planID}", h.AdminDeletePlan)
		r.Get("/plans/{planID}/tokens", h.AdminGetPlanTokens)
		r.Post("/plans/{planID}/draw", h.AdminRunDraw)
		r.Get("/draws", h.AdminGetDraws)

		r.Get("/transactions", h.AdminGetTransactions)
		r.Post("/transactions/{transactionID}/approve", h.AdminApproveTransaction)
		r.Post("/transactions/{transactionID}/reject", h.AdminRejectTransaction)

		r.Get("/methods", h.AdminGetPaymentMethods)
		r.Post("/methods", h.AdminCreatePaymentMethod)
		r.Put("/methods/{methodID}", h.AdminUpdatePaymentMethod)
		r.Delete("/methods/{methodID}", h.AdminDeletePaymentMethod)

		r.Put("/settings/support", h.AdminUpdateSupportContact)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
