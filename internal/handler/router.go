package handler

import (
	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/carpetwash-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса стирки ковров.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/api/", h.Root)
	r.Get("/api/health", h.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/session", h.ExchangeSession)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})

	r.Route("/api/locations", func(r chi.Router) {
		r.Get("/", h.AllLocations)
		r.Get("/cities", h.Cities)
		r.Get("/districts/{city}", h.Districts)
	})

	r.Route("/api/pricing", func(r chi.Router) {
		r.Get("/", h.Prices)
		r.Post("/calculate", h.Calculate)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/pool", h.OrderPool)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Post("/accept", h.AcceptOrder)
			r.Post("/reject", h.RejectOrder)
			r.Post("/cancel", h.CancelOrder)
			r.Post("/assign", h.AssignOrder)
			r.Patch("/status", h.UpdateOrderStatus)
			r.Post("/update-carpets", h.UpdateOrderCarpets)
		})
	})

	r.Route("/api/company", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/profile", h.CompanyProfile)
		r.Get("/stats", h.CompanyStats)
		r.Get("/reports", h.CompanyReport)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/stats", h.AdminStats)
		r.Get("/reports", h.AdminReport)
		r.Get("/companies", h.AdminListCompanies)
		r.Patch("/companies/{companyID}", h.AdminUpdateCompany)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.AdminListUsers)
			r.Patch("/{userID}", h.AdminUpdateUser)
			r.Delete("/{userID}", h.AdminDeleteUser)
			r.Post("/{userID}/ban", h.AdminBanUser)
			r.Post("/{userID}/unban", h.AdminUnbanUser)
		})
	})

	return r
}
