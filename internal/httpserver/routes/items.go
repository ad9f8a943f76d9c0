package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberhav/pricewatch/internal/httpserver/deps"
	"github.com/emberhav/pricewatch/internal/httpserver/handlers"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Route("/items", func(items chi.Router) {
			items.Post("/", handlers.CreateItem(d))
			items.Get("/", handlers.ListItems(d))
			items.Get("/{id}", handlers.GetItem(d))
			items.Delete("/{id}", handlers.DeleteItem(d))
			items.Patch("/{id}/note", handlers.UpdateNote(d))
			items.Patch("/{id}/notifications", handlers.UpdateNotifications(d))
			items.Post("/{id}/purchase", handlers.PurchaseItem(d))
		})
		api.Get("/history", handlers.History(d))
		api.Post("/scan", handlers.TriggerScan(d))
		api.Post("/sweep", handlers.TriggerSweep(d))
	})
}
