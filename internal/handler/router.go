package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anadi/splitledger/internal/metrics"
)

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/splits/preview", h.PreviewSplit)
		r.Post("/currency/convert", h.Convert)
		r.Post("/items/totals", h.ItemTotals)

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", h.CreateExpense)
			r.Get("/{expenseID}", h.GetExpense)
			r.Patch("/{expenseID}", h.EditExpense)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", h.CreateSettlement)
			r.Get("/{settlementID}", h.GetSettlement)
			r.Post("/{settlementID}/reverse", h.ReverseSettlement)
		})

		r.Get("/groups/{groupID}/balances", h.GroupBalances)
		r.Get("/direct/{directID}/balances", h.DirectBalances)
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}

func pathParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
