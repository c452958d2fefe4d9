package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/internal/pkg/imagepipeline"
)

// HandleUploadPendingImage stages a contributor image as a pending
// candidate for an existing entry. The upload never touches the official
// image; an admin promotes it later.
// POST /api/entries/:uuid/image (multipart/form-data, part "image")
func HandleUploadPendingImage(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}

	header, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "image file is required")
	}
	data, contentType, err := readUpload(header)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "reading image failed")
	}

	// The pending UUID doubles as the derivative file-name owner, so it is
	// fixed before the pipeline runs.
	pendingUUID := uuid.New().String()
	res, err := pipeline().ProcessAndSave(data, contentType, pendingUUID)
	if err != nil {
		switch {
		case errors.Is(err, imagepipeline.ErrPayloadTooLarge),
			errors.Is(err, imagepipeline.ErrUnsupportedType),
			errors.Is(err, imagepipeline.ErrUndecodable),
			errors.Is(err, imagepipeline.ErrEmptyPayload):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		fiberlog.Error(fmt.Sprintf("[Images] processing for %s failed: %v", entry.UUID, err))
		return errorJSON(c, fiber.StatusInternalServerError, "image processing failed")
	}

	pending := &models.PendingImage{
		UUID:       pendingUUID,
		EntryID:    entry.ID,
		Img256Path: imageURL(res.File256),
		Img512Path: imageURL(res.File512),
		ImagePHash: res.PHash,
		UploaderIP: c.IP(),
	}
	if err := r.PendingImage.Create(pending); err != nil {
		// Orphaned derivatives go straight to quarantine.
		if qerr := pipeline().MoveToQuarantine(pendingUUID); qerr != nil {
			fiberlog.Warn(fmt.Sprintf("[Images] quarantine for orphaned %s failed: %v", pendingUUID, qerr))
		}
		return errorJSON(c, fiber.StatusInternalServerError, "saving pending image failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":        pending.UUID,
		"entry_uuid":  entry.UUID,
		"img_256_url": pending.Img256Path,
		"img_512_url": pending.Img512Path,
		"image_phash": pending.ImagePHash,
	})
}

// HandleListPendingImages lists an entry's staged candidates.
// GET /api/entries/:uuid/pending
func HandleListPendingImages(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	pending, err := r.PendingImage.ListByEntry(entry.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing pending images failed")
	}
	return c.JSON(fiber.Map{"entry_uuid": entry.UUID, "pending": pending})
}
