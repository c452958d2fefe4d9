package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/bulkimport"
)

// HandleImportEntries runs a bulk JSON import and always answers with the
// full per-row report. Guard violations (payload size, row count) come back
// as 400, everything else as 200 with partial results.
// POST /api/entries/import
func HandleImportEntries(c *fiber.Ctx) error {
	payload := c.Body()

	var rows []bulkimport.Row
	if len(payload) <= bulkimport.MaxPayloadBytes {
		if err := json.Unmarshal(payload, &rows); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "payload must be a JSON array of rows")
		}
	}

	store := repository.NewImportStore(repos(), c.IP())
	v := bulkimport.New(store, ModerationFilter())
	report := v.Import(len(payload), rows)

	fiberlog.Info("[Import] accepted ", report.Accepted, " rejected ", len(report.Rejected))

	status := fiber.StatusOK
	if !report.OK {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(report)
}
