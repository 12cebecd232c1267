package enrichment

import (
	"errors"
	"strconv"

	"catalog-manager/core/logger"
	"catalog-manager/core/utils"
	"catalog-manager/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for enrichment.
type Handler struct {
	orchestrator *Orchestrator
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(orchestrator *Orchestrator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers the enrichment routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/enrichment")
	group.Post("/entries/:id", h.HandleEnrichEntry)
	group.Post("/sweep", h.HandleSweep)
	group.Get("/providers", h.HandleProviders)
}

// HandleEnrichEntry enriches one entry.
// @Summary Enrich Entry
// @Description Walks the provider chain for one entry. Entries inside their cool-down window are skipped unless force is set.
// @Tags enrichment
// @Produce json
// @Param id path int true "Entry ID"
// @Param force query boolean false "Ignore the cool-down window"
// @Success 200 {object} enrichment.Outcome
// @Failure 404 {object} map[string]string "Not Found"
// @Router /enrichment/entries/{id} [post]
func (h *Handler) HandleEnrichEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	l := logger.WithRayID(h.logger, c)

	entry, err := h.orchestrator.catalog.Get(c.Context(), uint(id))
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Failed to load entry for enrichment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := h.orchestrator.EnrichDetailed(c.Context(), entry, utils.ToBool(c.Query("force")))
	l.Info("Enrichment requested", zap.Uint("entry_id", entry.ID), zap.String("status", string(out.Status)))
	if out.Status == StatusFailed {
		return c.Status(fiber.StatusInternalServerError).JSON(out)
	}
	return c.JSON(out)
}

// HandleSweep enriches pending entries.
// @Summary Run Enrichment Sweep
// @Description Enriches entries lacking fresh metadata on a bounded worker pool.
// @Tags enrichment
// @Produce json
// @Param limit query int false "Max entries"
// @Param force query boolean false "Ignore the cool-down window"
// @Success 200 {object} enrichment.SweepReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /enrichment/sweep [post]
func (h *Handler) HandleSweep(c *fiber.Ctx) error {
	report, err := h.orchestrator.Sweep(c.Context(), SweepOptions{
		Limit: utils.ToInt(c.Query("limit")),
		Force: utils.ToBool(c.Query("force")),
	})
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Enrichment sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleProviders reports provider statistics.
// @Summary Provider Statistics
// @Tags enrichment
// @Produce json
// @Success 200 {object} provider.Statistics
// @Router /enrichment/providers [get]
func (h *Handler) HandleProviders(c *fiber.Ctx) error {
	return c.JSON(h.orchestrator.ProviderStatistics())
}
