package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/AlexZinkM/settlement-ramp/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.BridgeHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", h.Health)
	r.Get("/quote", h.Quote)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/fields/{name}", h.SetField)
			r.Post("/back", h.Back)

			r.Post("/amount/continue", h.ContinueFromAmount)

			r.Post("/paypal/connect", h.ConnectPayPal)
			r.Post("/paypal/disconnect", h.DisconnectPayPal)
			r.Post("/paypal/continue", h.ContinueFromPayPal)

			r.Put("/wallet-connection", h.ReportWalletConnection)
			r.Delete("/wallet-connection", h.ClearWalletConnection)
			r.Post("/wallet/resolve", h.ResolveENS)
			r.Post("/wallet/use-connected", h.UseConnectedWallet)
			r.Post("/wallet/continue", h.ContinueFromWallet)

			r.Get("/summary", h.Summary)
			r.Post("/confirm", h.Confirm)
			r.Get("/status", h.Status)
			r.Get("/events", h.Events)
			r.Post("/reset", h.Reset)
			r.Get("/receipt", h.Receipt)
		})
	})

	return r
}
