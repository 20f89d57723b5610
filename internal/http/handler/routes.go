package handler

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"photoapp/internal/logging"
	"photoapp/internal/model"
	"photoapp/internal/service"
	"photoapp/internal/view"
)

const (
	TitleIndex = "My Photos"
	TitleAdd   = "Share a New Photo!"

	formFileField    = "photoFile"
	formCaptionField = "photoCaption"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.PhotoService, renderer view.Renderer, logger *slog.Logger) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	index := ListPhotos(svc, renderer)
	app.Get("/", index)
	app.Post("/", index)

	add := AddPhoto(svc, renderer, logger)
	app.Get("/add", add)
	app.Post("/add", add)
}

// HealthCheck checks DB connectivity only.
//
// @Summary     Readiness probe
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string
// @Failure     503 {object} errorPayload
// @Router      /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
//
// @Summary     Liveness probe
// @Tags        health
// @Success     200
// @Router      /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListPhotos renders every recorded photo.
//
// @Summary     Photo listing page
// @Tags        photos
// @Produce     html
// @Success     200 {string} string "HTML page"
// @Router      / [get]
func ListPhotos(svc service.PhotoService, renderer view.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		images := svc.List(c.UserContext())
		return render(c, renderer, view.ViewIndex, view.Data{
			"title":  TitleIndex,
			"images": images,
		})
	}
}

// AddPhoto renders the upload form. On POST it runs the upload first and
// shows its outcome as an alert above the form.
//
// @Summary     Upload a photo
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     html
// @Param       photoFile    formData file   true  "Image file"
// @Param       photoCaption formData string false "Caption"
// @Success     200 {string} string "HTML page"
// @Router      /add [post]
func AddPhoto(svc service.PhotoService, renderer view.Renderer, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return func(c *fiber.Ctx) error {
		data := view.Data{"title": TitleAdd}
		if c.Method() != fiber.MethodPost {
			return render(c, renderer, view.ViewAdd, data)
		}

		file, closeFile := uploadedFile(c)
		defer closeFile()

		_, err := svc.Upload(c.UserContext(), file, c.FormValue(formCaptionField))
		if err != nil {
			logger.ErrorContext(c.UserContext(), "photo_upload_failed",
				"request_id", requestIDFromCtx(c),
				"kind", service.FailureKind(err),
				"error", err.Error(),
			)
		}

		alert := service.UploadAlert(err)
		data["alert"] = &alert
		return render(c, renderer, view.ViewAdd, data)
	}
}

// uploadedFile extracts the photoFile part. A missing part yields nil, and
// a part that cannot be opened carries the open error.
func uploadedFile(c *fiber.Ctx) (*model.UploadedFile, func()) {
	fh, err := c.FormFile(formFileField)
	if err != nil {
		return nil, func() {}
	}

	file := &model.UploadedFile{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
	}
	f, err := fh.Open()
	if err != nil {
		file.Err = err
		return file, func() {}
	}
	file.Content = f
	return file, func() { _ = f.Close() }
}

func render(c *fiber.Ctx, renderer view.Renderer, name string, data view.Data) error {
	var buf bytes.Buffer
	if err := renderer.Render(c.UserContext(), &buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
