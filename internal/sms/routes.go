package sms

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/webhook/sms-received", h.WebhookHealth)
		r.Post("/webhook/sms-received", h.ReceiveWebhook)
		r.Post("/notify-heads", h.NotifyHeads)
		r.Post("/request-relievers", h.RequestRelievers)
		r.Get("/relievers/minimal", h.ListRelievers)
		r.Post("/analyze-replies", h.AnalyzeReplies)
	})
}
