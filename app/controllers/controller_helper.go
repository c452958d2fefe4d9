package controllers

import (
	"io"
	"mime/multipart"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/env"
	"github.com/craftatlas/craftatlas/internal/pkg/imagepipeline"
)

// entryLocks serializes official-image replacement per entry UUID. The
// pipeline's move-then-write sequence is not internally serialized, so the
// caller holds this lock around it.
var entryLocks sync.Map

func lockEntry(uuid string) func() {
	mu, _ := entryLocks.LoadOrStore(uuid, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// evictEntryLock drops the mutex for an entry that no longer exists, so the
// map does not accumulate one entry per UUID ever locked. Goroutines already
// waiting on the old mutex still serialize against each other and then find
// the entry gone.
func evictEntryLock(uuid string) {
	entryLocks.Delete(uuid)
}

// pipeline returns the shared image pipeline over the configured root.
func pipeline() *imagepipeline.Pipeline {
	return imagepipeline.New(env.GetEnv("IMAGE_ROOT", "images"))
}

// imageURL maps a pipeline filename onto its public URL path.
func imageURL(fileName string) string {
	return "/images/" + fileName
}

func repos() *repository.Repositories {
	return repository.GetGlobalRepositories()
}

// readUpload pulls the raw bytes and declared content type out of a
// multipart file header. Size violations are left to the pipeline so the
// reason string stays in one place.
func readUpload(header *multipart.FileHeader) ([]byte, string, error) {
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imagepipeline.MaxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

// errorJSON writes a uniform error payload.
func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// entryResponse is the wire shape of an entry, with the nullable official
// image triple resolved to URLs.
func entryResponse(e *models.Entry) fiber.Map {
	m := fiber.Map{
		"uuid":           e.UUID,
		"tier":           e.Tier,
		"name":           e.Name,
		"canonical_name": e.CanonicalName,
		"status":         e.Status,
		"created_at":     e.CreatedAt,
		"updated_at":     e.UpdatedAt,
	}
	if e.Type != nil {
		m["type"] = fiber.Map{"name": e.Type.Name, "slug": e.Type.Slug}
	}
	if e.Biome != nil {
		m["biome"] = fiber.Map{"name": e.Biome.Name, "slug": e.Biome.Slug}
	}
	if e.HasOfficialImage() {
		m["img_256_url"] = *e.Img256Path
		m["img_512_url"] = *e.Img512Path
		if e.ImagePHash != nil {
			m["image_phash"] = *e.ImagePHash
		} else {
			m["image_phash"] = nil
		}
	} else {
		m["img_256_url"] = nil
		m["img_512_url"] = nil
		m["image_phash"] = nil
	}
	return m
}
