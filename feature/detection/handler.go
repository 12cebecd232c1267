package detection

import (
	"catalog-manager/core/logger"
	"catalog-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for detection sync.
type Handler struct {
	syncer    *Syncer
	registry  *Registry
	keepStale bool
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(syncer *Syncer, registry *Registry, keepStale bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{syncer: syncer, registry: registry, keepStale: keepStale, logger: logger}
}

// RegisterRoutes registers the detection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/detection")
	group.Get("/platforms", h.HandlePlatforms)
	group.Post("/platforms/:platform/sync", h.HandleSync)
}

// PlatformInfo describes a registered detector.
type PlatformInfo struct {
	Platform    string `json:"platform"`
	Installed   bool   `json:"installed"`
	InstallPath string `json:"install_path,omitempty"`
}

// HandlePlatforms lists the registered detectors.
// @Summary List Detection Platforms
// @Tags detection
// @Produce json
// @Success 200 {array} detection.PlatformInfo
// @Router /detection/platforms [get]
func (h *Handler) HandlePlatforms(c *fiber.Ctx) error {
	platforms := make([]PlatformInfo, 0)
	for _, name := range h.registry.Platforms() {
		d, _ := h.registry.Get(name)
		platforms = append(platforms, PlatformInfo{
			Platform:    name,
			Installed:   d.IsInstalled(),
			InstallPath: d.InstallPath(),
		})
	}
	return c.JSON(platforms)
}

// HandleSync runs a detection pass for one platform.
// @Summary Sync Platform
// @Description Records the platform's installed games in the catalog and removes stale installed records.
// @Tags detection
// @Produce json
// @Param platform path string true "Platform name"
// @Param dry_run query boolean false "Plan without writing"
// @Success 200 {object} detection.SyncReport
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /detection/platforms/{platform}/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	d, err := h.registry.Get(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.syncer.Sync(c.Context(), d, SyncOptions{
		DryRun:    utils.ToBool(c.Query("dry_run")),
		KeepStale: h.keepStale,
	})
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Detection sync failed", zap.String("platform", d.PlatformName()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
