package api

import "github.com/go-chi/chi/v5"

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(h.RequireSession).Post("/logout", h.handleLogout)

		r.Get("/devices", h.handleDeviceList)
		r.Get("/devices/{deviceId}", h.handleDeviceGet)
		r.Get("/telemetry/{deviceId}", h.handleTelemetry)
		r.Get("/telemetry/{deviceId}/stats", h.handleTelemetryStats)

		r.Get("/rules/catalog", h.handleRuleCatalog)
		r.Post("/rules/preview", h.handleRulePreview)
		r.Route("/rules", func(r chi.Router) {
			r.Use(h.OptionalSession)
			r.Get("/", h.handleRuleList)
			r.Post("/", h.handleRuleCreate)
			r.Put("/{ruleId}", h.handleRuleUpdate)
			r.Patch("/{ruleId}/status", h.handleRuleStatus)
			r.Delete("/{ruleId}", h.handleRuleDelete)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Get("/", h.handleDraftList)
			r.Post("/", h.handleDraftCreate)
			r.Get("/{draftId}", h.handleDraftGet)
			r.Put("/{draftId}", h.handleDraftUpdate)
			r.Delete("/{draftId}", h.handleDraftDelete)
		})

		r.Get("/analytics/datasets", h.handleDatasetList)
		r.Post("/analytics/run", h.handleJobRun)
		r.Get("/analytics/job", h.handleJobSnapshot)
		r.Post("/analytics/stop", h.handleJobStop)

		r.Post("/reports/generate", h.handleReportGenerate)
		r.Get("/reports/{exportId}/status", h.handleReportStatus)
		r.Get("/reports/{exportId}/download", h.handleReportDownload)
	})
}
