package catalog

import (
	"errors"
	"strconv"

	"catalog-manager/core/logger"
	"catalog-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	store  *Store
	logger *zap.Logger
	actor  string
}

// NewHandler creates a new HTTP handler. Writes are attributed to actor.
func NewHandler(store *Store, logger *zap.Logger, actor string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger, actor: actor}
}

// UpsertRequest is the body of PUT /catalog/entries.
type UpsertRequest struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
	EntryFields
}

// UpsertResponse reports the stored entry and whether it was created.
type UpsertResponse struct {
	Entry   *ReferenceEntry `json:"entry"`
	Created bool            `json:"created"`
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/entries", h.HandleList)
	group.Put("/entries", h.HandleUpsert)
	group.Get("/entries/:id", h.HandleGet)
	group.Delete("/entries/:id", h.HandleDelete)
	group.Get("/entries/:id/history", h.HandleHistory)
	group.Get("/changes", h.HandleChanges)
	group.Get("/version", h.HandleVersion)
	group.Get("/stats", h.HandleStats)
	group.Get("/installed", h.HandleInstalled)
}

// HandleList lists catalog entries.
// @Summary List Entries
// @Description Lists reference entries, optionally filtered by source, type and name.
// @Tags catalog
// @Produce json
// @Param source query string false "Source (e.g. 'Steam')"
// @Param type query string false "Entry type"
// @Param q query string false "Name contains"
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Entries and total"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/entries [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	q := ListQuery{
		Source: c.Query("source"),
		Search: c.Query("q"),
		Limit:  utils.ToInt(c.Query("limit")),
		Offset: utils.ToInt(c.Query("offset")),
	}
	if t := c.Query("type"); t != "" {
		q.Type = ParseEntryType(t)
	}

	entries, total, err := h.store.List(c.Context(), q)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Catalog list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"entries": entries, "total": total})
}

// HandleGet returns one entry.
// @Summary Get Entry
// @Tags catalog
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} catalog.ReferenceEntry
// @Failure 404 {object} map[string]string "Not Found"
// @Router /catalog/entries/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	entry, err := h.store.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entry)
}

// HandleUpsert creates or updates an entry keyed by source and external id.
// @Summary Upsert Entry
// @Description Creates the entry or applies the provided fields. Unchanged entries keep their version.
// @Tags catalog
// @Accept json
// @Produce json
// @Param entry body catalog.UpsertRequest true "Entry"
// @Success 200 {object} catalog.UpsertResponse
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/entries [put]
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	entry, created, err := h.store.Upsert(c.Context(), req.Source, req.ExternalID, req.EntryFields, ChangedBy(h.actor))
	if err != nil {
		return h.fail(c, err)
	}
	logger.WithRayID(h.logger, c).Info("Entry upserted",
		zap.Uint("id", entry.ID),
		zap.Bool("created", created),
		zap.Int64("version", entry.Version))
	return c.JSON(UpsertResponse{Entry: entry, Created: created})
}

// HandleDelete removes an entry.
// @Summary Delete Entry
// @Tags catalog
// @Param id path int true "Entry ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /catalog/entries/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.Delete(c.Context(), id, ChangedBy(h.actor)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleHistory returns the audit trail of an entry.
// @Summary Entry History
// @Tags catalog
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {array} catalog.ChangeLog
// @Router /catalog/entries/{id}/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	rows, err := h.store.History(c.Context(), EntityReferenceEntry, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

// HandleChanges returns the change feed after a version.
// @Summary Change Feed
// @Description Returns audit rows with a catalog version greater than 'since'.
// @Tags catalog
// @Produce json
// @Param since query int false "Last version seen"
// @Param limit query int false "Max rows"
// @Success 200 {array} catalog.ChangeLog
// @Router /catalog/changes [get]
func (h *Handler) HandleChanges(c *fiber.Ctx) error {
	rows, err := h.store.ChangesSince(c.Context(), utils.ToInt64(c.Query("since")), utils.ToInt(c.Query("limit")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

// HandleVersion returns the current catalog version.
// @Summary Catalog Version
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /catalog/version [get]
func (h *Handler) HandleVersion(c *fiber.Ctx) error {
	version, err := h.store.CurrentVersion(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"version": version})
}

// HandleStats returns catalog statistics.
// @Summary Catalog Stats
// @Tags catalog
// @Produce json
// @Success 200 {object} catalog.Stats
// @Router /catalog/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

// HandleInstalled lists installed records.
// @Summary Installed Records
// @Tags catalog
// @Produce json
// @Param platform query string false "Platform"
// @Success 200 {array} catalog.InstalledRecord
// @Router /catalog/installed [get]
func (h *Handler) HandleInstalled(c *fiber.Ctx) error {
	records, err := h.store.ListInstalled(c.Context(), c.Query("platform"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(records)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.logger, c).Error("Catalog request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
