package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
	"github.com/craftatlas/craftatlas/internal/pkg/dedup"
	"github.com/craftatlas/craftatlas/internal/pkg/moderation"
)

// submitRequest is the typed shape of a single interactive submission.
type submitRequest struct {
	Name  string `form:"name" validate:"required,max=80"`
	Tier  int    `form:"tier" validate:"required,min=1,max=10"`
	Type  string `form:"type" validate:"required"`
	Biome string `form:"biome" validate:"required"`
}

// Filter and detector are immutable and shared across requests.
var (
	submitFilter   = moderation.NewDefaultFilter()
	submitDetector = dedup.NewDetector()
)

// SetModerationFilter swaps the process-wide filter. Called once at
// startup when MODERATION_TERMS overrides the default list.
func SetModerationFilter(f *moderation.Filter) {
	submitFilter = f
}

// ModerationFilter exposes the active filter to other controllers.
func ModerationFilter() *moderation.Filter {
	return submitFilter
}

// HandleListEntries returns a filtered, paginated entry listing.
// GET /api/entries?q=&tier=&type=&biome=&status=&page=&limit=
func HandleListEntries(c *fiber.Ctx) error {
	r := repos()

	filter := repository.EntryFilter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
	}
	if tier, err := strconv.Atoi(c.Query("tier")); err == nil {
		filter.Tier = tier
	}
	if ref, _ := r.Taxonomy.ResolveType(c.Query("type")); ref != nil {
		filter.TypeID = ref.ID
	}
	if ref, _ := r.Taxonomy.ResolveBiome(c.Query("biome")); ref != nil {
		filter.BiomeID = ref.ID
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := r.Entry.Count(filter)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing failed")
	}
	entries, err := r.Entry.List(filter, (page-1)*limit, limit)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing failed")
	}

	items := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		items = append(items, entryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"items": items, "total": total, "page": page, "limit": limit})
}

// HandleCreateEntry accepts one contributor submission, optionally with an
// image part named "image".
// POST /api/entries (multipart/form-data)
func HandleCreateEntry(c *fiber.Ctx) error {
	req := submitRequest{
		Name:  c.FormValue("name"),
		Type:  c.FormValue("type"),
		Biome: c.FormValue("biome"),
	}
	if tier, err := strconv.Atoi(c.FormValue("tier")); err == nil {
		req.Tier = tier
	}
	if err := validator.New().Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "name, tier (1-10), type, and biome are required")
	}

	r := repos()
	typeRef, err := r.Taxonomy.ResolveType(req.Type)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "type lookup failed")
	}
	if typeRef == nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown type %q", req.Type))
	}
	biomeRef, err := r.Taxonomy.ResolveBiome(req.Biome)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "biome lookup failed")
	}
	if biomeRef == nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown biome %q", req.Biome))
	}

	if matched, term := submitFilter.ContainsProhibited(req.Name); matched {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("prohibited term detected: %s", term))
	}

	canon := canonical.Canonicalize(req.Name)

	// Exact-key guard; the unique index backs this up under races.
	existing, err := r.Entry.FindByKey(req.Tier, typeRef.ID, biomeRef.ID, canon)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "duplicate check failed")
	}
	if existing != nil {
		return errorJSON(c, fiber.StatusConflict, repository.ErrDuplicateEntry.Error())
	}

	// Advisory fuzzy scan over the same bucket; a near match is a soft
	// warning on the response, never a rejection.
	var warning string
	if bucket, err := r.Entry.ListBucket(req.Tier, typeRef.ID, biomeRef.ID); err == nil {
		incoming := dedup.Candidate{Tier: req.Tier, TypeID: typeRef.ID, BiomeID: biomeRef.ID, CanonicalName: canon}
		for i := range bucket {
			cand := dedup.Candidate{Tier: bucket[i].Tier, TypeID: bucket[i].TypeID, BiomeID: bucket[i].BiomeID, CanonicalName: bucket[i].CanonicalName}
			if dup, score := submitDetector.IsStrongDuplicate(cand, incoming); dup {
				warning = fmt.Sprintf("very similar to existing entry %q (score %.2f)", bucket[i].Name, score)
				break
			}
		}
	}

	entry := &models.Entry{
		Tier:          req.Tier,
		Name:          req.Name,
		CanonicalName: canon,
		TypeID:        typeRef.ID,
		BiomeID:       biomeRef.ID,
		Status:        models.StatusUnconfirmed,
		SubmitterIP:   c.IP(),
	}
	if err := r.Entry.Create(entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost the race to a concurrent submitter; same outcome as
			// the advisory path.
			return errorJSON(c, fiber.StatusConflict, repository.ErrDuplicateEntry.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, "saving entry failed")
	}

	resp := fiber.Map{"entry": entryResponse(entry)}
	if warning != "" {
		resp["warning"] = warning
	}

	// Image processing runs independently of the text checks; its failure
	// never rolls back the accepted submission.
	if header, err := c.FormFile("image"); err == nil && header != nil {
		data, contentType, err := readUpload(header)
		if err != nil {
			resp["image_error"] = "reading image failed"
			return c.Status(fiber.StatusCreated).JSON(resp)
		}

		unlock := lockEntry(entry.UUID)
		res, err := pipeline().ProcessAndSave(data, contentType, entry.UUID)
		unlock()
		if err != nil {
			fiberlog.Warn(fmt.Sprintf("[Entries] image for %s rejected: %v", entry.UUID, err))
			resp["image_error"] = err.Error()
			return c.Status(fiber.StatusCreated).JSON(resp)
		}

		if err := r.Entry.SetOfficialImage(entry.ID, imageURL(res.File256), imageURL(res.File512), res.PHash); err != nil {
			resp["image_error"] = "saving image failed"
			return c.Status(fiber.StatusCreated).JSON(resp)
		}
		resp["entry"].(fiber.Map)["img_256_url"] = imageURL(res.File256)
		resp["entry"].(fiber.Map)["img_512_url"] = imageURL(res.File512)
		resp["entry"].(fiber.Map)["image_phash"] = res.PHash
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleGetEntry returns one entry by UUID.
// GET /api/entries/:uuid
func HandleGetEntry(c *fiber.Ctx) error {
	entry, err := repos().Entry.GetByUUID(c.Params("uuid"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "entry not found")
	}
	return c.JSON(entryResponse(entry))
}
