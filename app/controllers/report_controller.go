package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/craftatlas/craftatlas/app/models"
)

type reportRequest struct {
	Target string `json:"target" form:"target"`
	Reason string `json:"reason" form:"reason"`
	Notes  string `json:"notes" form:"notes"`
}

// HandleCreateReport files a user flag against an entry or its official
// image.
// POST /api/entries/:uuid/reports
func HandleCreateReport(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidTarget(req.Target) {
		return errorJSON(c, fiber.StatusBadRequest, "target must be entry or official_image")
	}
	if !models.ValidReason(req.Reason) {
		return errorJSON(c, fiber.StatusBadRequest, "reason must be incorrect or policy_violation")
	}

	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	if req.Target == models.ReportTargetOfficialImage && !entry.HasOfficialImage() {
		return errorJSON(c, fiber.StatusBadRequest, "entry has no official image to report")
	}

	report := &models.Report{
		EntryID:    entry.ID,
		Target:     req.Target,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Status:     models.ReportStatusOpen,
		ReporterIP: c.IP(),
	}
	if err := r.Report.Create(report); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "saving report failed")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleListOpenReports pages through unresolved reports for admin review.
// GET /api/admin/reports
func HandleListOpenReports(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	reports, err := repos().Report.ListOpen((page-1)*limit, limit)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing reports failed")
	}
	return c.JSON(fiber.Map{"reports": reports, "page": page, "limit": limit})
}

// HandleCloseReport resolves a report. Closing is idempotent.
// POST /api/admin/reports/:id/close
func HandleCloseReport(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	r := repos()
	report, err := r.Report.GetByID(uint(id))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "report not found")
	}
	if report.Status != models.ReportStatusClosed {
		if err := r.Report.Close(report.ID); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "closing report failed")
		}
		report.Status = models.ReportStatusClosed
	}
	return c.JSON(report)
}
