package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

type statusRequest struct {
	Status string `json:"status" form:"status" validate:"required,oneof=confirmed unconfirmed"`
}

type editRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=80"`
	Tier  int    `json:"tier" form:"tier" validate:"required,min=1,max=10"`
	Type  string `json:"type" form:"type" validate:"required"`
	Biome string `json:"biome" form:"biome" validate:"required"`
}

// HandleUpdateStatus moves an entry between unconfirmed and confirmed.
// Unknown status values are rejected, not coerced.
// POST /api/admin/entries/:uuid/status
func HandleUpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validator.New().Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "status must be confirmed or unconfirmed")
	}

	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	if err := r.Entry.UpdateStatus(entry.ID, req.Status); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "updating status failed")
	}
	entry.Status = req.Status
	return c.JSON(entryResponse(entry))
}

// HandleEditEntry rewrites an entry's name, tier, type, or biome. The new
// name passes the same moderation and canonicalization as a submission, and
// the rewritten key must stay unique.
// PUT /api/admin/entries/:uuid
func HandleEditEntry(c *fiber.Ctx) error {
	req := editRequest{
		Name:  c.FormValue("name"),
		Type:  c.FormValue("type"),
		Biome: c.FormValue("biome"),
	}
	if tier, err := strconv.Atoi(c.FormValue("tier")); err == nil {
		req.Tier = tier
	}
	if req.Name == "" && req.Type == "" {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validator.New().Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "name, tier (1-10), type, and biome are required")
	}

	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}

	typeRef, err := r.Taxonomy.ResolveType(req.Type)
	if err != nil || typeRef == nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown type %q", req.Type))
	}
	biomeRef, err := r.Taxonomy.ResolveBiome(req.Biome)
	if err != nil || biomeRef == nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown biome %q", req.Biome))
	}

	if matched, term := ModerationFilter().ContainsProhibited(req.Name); matched {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("prohibited term detected: %s", term))
	}

	prevName := entry.Name
	prevCanonical := entry.CanonicalName

	entry.Name = req.Name
	entry.CanonicalName = canonical.Canonicalize(req.Name)
	entry.Tier = req.Tier
	entry.TypeID = typeRef.ID
	entry.BiomeID = biomeRef.ID

	if err := r.Entry.Update(entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return errorJSON(c, fiber.StatusConflict, repository.ErrDuplicateEntry.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, "updating entry failed")
	}

	// A rename keeps the old name findable as an alias.
	if entry.CanonicalName != prevCanonical {
		if err := r.Entry.AddAlias(entry.ID, prevName); err != nil {
			fiberlog.Warn(fmt.Sprintf("[Admin] recording alias %q for %s failed: %v", prevName, entry.UUID, err))
		}
	}
	return c.JSON(entryResponse(entry))
}

// HandleDeleteEntry removes an entry together with its pending images,
// reports, and aliases. Every image file the entry owned ends up in
// quarantine, not deleted.
// DELETE /api/admin/entries/:uuid
func HandleDeleteEntry(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}

	unlock := lockEntry(entry.UUID)
	defer unlock()

	pending, err := r.PendingImage.ListByEntry(entry.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "deleting entry failed")
	}
	if err := r.Entry.Delete(entry.ID); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "deleting entry failed")
	}

	p := pipeline()
	if err := p.MoveToQuarantine(entry.UUID); err != nil {
		fiberlog.Warn(fmt.Sprintf("[Admin] quarantine for %s failed: %v", entry.UUID, err))
	}
	for i := range pending {
		if err := p.MoveToQuarantine(pending[i].UUID); err != nil {
			fiberlog.Warn(fmt.Sprintf("[Admin] quarantine for pending %s failed: %v", pending[i].UUID, err))
		}
	}

	evictEntryLock(entry.UUID)
	return c.JSON(fiber.Map{"deleted": entry.UUID})
}

// HandlePromotePendingImage republishes a staged candidate as the entry's
// official image. The previous official files go to quarantine and the
// pending record is consumed.
// POST /api/admin/entries/:uuid/promote/:pendingUUID
func HandlePromotePendingImage(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	pending, err := r.PendingImage.GetByUUID(c.Params("pendingUUID"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "pending image not found")
	}
	if pending.EntryID != entry.ID {
		return errorJSON(c, fiber.StatusBadRequest, "pending image belongs to a different entry")
	}

	unlock := lockEntry(entry.UUID)
	defer unlock()

	res, err := pipeline().Promote(entry.UUID, pending.UUID)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Admin] promoting %s onto %s failed: %v", pending.UUID, entry.UUID, err))
		return errorJSON(c, fiber.StatusInternalServerError, "promoting image failed")
	}

	if err := r.Entry.SetOfficialImage(entry.ID, imageURL(res.File256), imageURL(res.File512), pending.ImagePHash); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "saving promoted image failed")
	}
	if err := r.PendingImage.Delete(pending.ID); err != nil {
		fiberlog.Warn(fmt.Sprintf("[Admin] removing consumed pending record %s failed: %v", pending.UUID, err))
	}

	return c.JSON(fiber.Map{
		"entry_uuid":  entry.UUID,
		"img_256_url": imageURL(res.File256),
		"img_512_url": imageURL(res.File512),
		"image_phash": pending.ImagePHash,
	})
}

// HandlePurgePendingImages discards every staged candidate for an entry.
// Their files move to quarantine.
// POST /api/admin/entries/:uuid/purge-pending
func HandlePurgePendingImages(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}

	purged, err := r.PendingImage.PurgeByEntry(entry.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "purging pending images failed")
	}

	p := pipeline()
	for i := range purged {
		if err := p.MoveToQuarantine(purged[i].UUID); err != nil {
			fiberlog.Warn(fmt.Sprintf("[Admin] quarantine for pending %s failed: %v", purged[i].UUID, err))
		}
	}
	return c.JSON(fiber.Map{"entry_uuid": entry.UUID, "purged": len(purged)})
}

// HandleRemoveOfficialImage retires the entry's official image without a
// replacement. Files go to quarantine and the image columns are cleared.
// POST /api/admin/entries/:uuid/image/remove
func HandleRemoveOfficialImage(c *fiber.Ctx) error {
	r := repos()
	entry, err := r.Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	if !entry.HasOfficialImage() {
		return errorJSON(c, fiber.StatusBadRequest, "entry has no official image")
	}

	unlock := lockEntry(entry.UUID)
	defer unlock()

	if err := pipeline().MoveToQuarantine(entry.UUID); err != nil {
		fiberlog.Warn(fmt.Sprintf("[Admin] quarantine for %s failed: %v", entry.UUID, err))
	}
	if err := r.Entry.ClearOfficialImage(entry.ID); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "clearing image failed")
	}

	entry.Img256Path, entry.Img512Path, entry.ImagePHash = nil, nil, nil
	return c.JSON(entryResponse(entry))
}
