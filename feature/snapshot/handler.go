package snapshot

import (
	"errors"

	"catalog-manager/core/logger"
	"catalog-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for catalog snapshots.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the snapshot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/snapshots")
	group.Post("/", h.HandlePublish)
	group.Get("/", h.HandleList)
	group.Get("/latest", h.HandleLatest)
	group.Get("/:version", h.HandleLoad)
}

// HandlePublish publishes a snapshot of the current catalog.
// @Summary Publish Snapshot
// @Description Writes all entries at the current catalog version to object storage and updates the latest manifest.
// @Tags snapshots
// @Produce json
// @Success 201 {object} snapshot.Manifest
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshots [post]
func (h *Handler) HandlePublish(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	manifest, err := h.service.Publish(c.Context())
	if err != nil {
		l.Error("Snapshot publish failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(manifest)
}

// HandleList lists stored snapshot versions.
// @Summary List Snapshots
// @Tags snapshots
// @Produce json
// @Success 200 {array} int
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshots [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	versions, err := h.service.List(c.Context())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Snapshot listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if versions == nil {
		versions = []int64{}
	}
	return c.JSON(versions)
}

// HandleLatest returns the latest manifest.
// @Summary Latest Snapshot
// @Tags snapshots
// @Produce json
// @Success 200 {object} snapshot.Manifest
// @Failure 404 {object} map[string]string "Not Found"
// @Router /snapshots/latest [get]
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	manifest, err := h.service.Latest(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(manifest)
}

// HandleLoad returns the snapshot of one catalog version.
// @Summary Get Snapshot
// @Tags snapshots
// @Produce json
// @Param version path int true "Catalog version"
// @Success 200 {object} snapshot.Document
// @Failure 404 {object} map[string]string "Not Found"
// @Router /snapshots/{version} [get]
func (h *Handler) HandleLoad(c *fiber.Ctx) error {
	version := utils.ToInt64(c.Params("version"))
	if version <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid version"})
	}
	doc, err := h.service.Load(c.Context(), version)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(doc)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNoSnapshot) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.logger, c).Error("Snapshot read failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
