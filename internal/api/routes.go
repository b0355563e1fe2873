package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	pills := api.Group("/pill-tracking")
	pills.Post("/setup", handler.SetupPillSchedule)
	pills.Patch("", handler.UpdatePillSchedule)
	pills.Get("", handler.ListPillSchedule)
	pills.Get("/weekly", handler.WeeklyPillSchedule)
	pills.Get("/monthly", handler.MonthlyPillSchedule)
	pills.Get("/statistics", handler.PillStatistics)
	pills.Patch("/mark-as-taken/:id", handler.MarkPillTaken)
	pills.Delete("/clear", handler.ClearPillSchedule)
	pills.Post("/test-reminder", handler.SendTestReminder)

	cycles := api.Group("/cycles")
	cycles.Post("", handler.StartCycle)
	cycles.Get("/latest", handler.LatestCycle)
	cycles.Delete("/:id", handler.DeleteCycle)
}
