package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp wires the handler into a fiber app. Optional routes are only
// registered when the handler was built with the matching option.
func NewApp(h *Handler, allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "symptomrank",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: allowOrigins}))

	app.Get("/", h.Status)
	app.Get("/symptoms", h.Symptoms)
	app.Get("/diseases", h.Diseases)
	app.Post("/predict", h.Predict)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if h.reader != nil {
		app.Get("/predictions", h.ListPredictions)
		app.Get("/predictions/:id", h.GetPrediction)
	}

	admin := app.Group("/admin")
	if h.reload != nil {
		admin.Post("/reload", h.Reload)
	}
	if h.join != nil {
		admin.Post("/join", h.Join)
	}

	return app
}
