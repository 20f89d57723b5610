package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "photoapp/docs"
)

// RegisterDocs serves the Swagger UI and doc.json under /swagger.
func RegisterDocs(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}
