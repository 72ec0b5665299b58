package api

import (
	"net/http"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface. The route layout mirrors the public
// API this service has always exposed.
func NewRouter(purchases *PurchaseHandler, carts *CartHandler, products *ProductHandler, m *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware(m))
	r.Use(PrincipalMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", products.ListAvailable)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{productID}", carts.UpdateQuantity)
			r.Delete("/items/{productID}", carts.RemoveItem)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/process", purchases.ProcessPurchase)
			r.Get("/my-tickets", purchases.MyTickets)
			r.Get("/ticket/code/{code}", purchases.TicketByCode)
			r.Get("/admin/all-tickets", purchases.AllTickets)
			r.Get("/admin/statistics", purchases.Statistics)
		})
	})

	return r
}
