package controllers

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/imagepipeline"
)

var (
	adminTestOnce sync.Once
	adminTestApp  *fiber.App
	testImageRoot string
)

// setupAdminTest boots one shared sqlite-backed app for the admin handler
// tests. The global repository factory only initializes once per process, so
// the database handle is shared too.
func setupAdminTest(t *testing.T) *fiber.App {
	t.Helper()
	adminTestOnce.Do(func() {
		root, err := os.MkdirTemp("", "craftatlas-images-*")
		require.NoError(t, err)
		testImageRoot = root
		os.Setenv("IMAGE_ROOT", root)

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(
			&models.EntryType{},
			&models.Biome{},
			&models.Entry{},
			&models.EntryAlias{},
			&models.PendingImage{},
			&models.Report{},
		))
		repository.InitializeFactory(db)

		app := fiber.New()
		app.Post("/api/admin/entries/:uuid/promote/:pendingUUID", HandlePromotePendingImage)
		adminTestApp = app
	})
	return adminTestApp
}

func createTestEntry(t *testing.T, name string, tier int) *models.Entry {
	t.Helper()
	entry := &models.Entry{Tier: tier, Name: name, TypeID: 1, BiomeID: 1, Status: models.StatusUnconfirmed}
	require.NoError(t, repos().Entry.Create(entry))
	return entry
}

// stagePending creates a pending record plus the placeholder derivative
// files promotion renames.
func stagePending(t *testing.T, entryID uint, phash string) *models.PendingImage {
	t.Helper()
	pending := &models.PendingImage{
		EntryID:    entryID,
		Img256Path: "unset",
		Img512Path: "unset",
		ImagePHash: phash,
	}
	require.NoError(t, repos().PendingImage.Create(pending))
	for _, size := range []int{imagepipeline.ThumbSmall, imagepipeline.ThumbLarge} {
		name := imagepipeline.FileName(pending.UUID, size)
		require.NoError(t, os.WriteFile(filepath.Join(testImageRoot, name), []byte("webp"), 0644))
	}
	return pending
}

func TestPromoteConsumesOnlyChosenPendingRecord(t *testing.T) {
	app := setupAdminTest(t)

	entry := createTestEntry(t, "Maple Tree", 2)
	chosen := stagePending(t, entry.ID, "00000000ffffffff")
	sibling := stagePending(t, entry.ID, "ffffffff00000000")

	req := httptest.NewRequest(fiber.MethodPost,
		"/api/admin/entries/"+entry.UUID+"/promote/"+chosen.UUID, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated, err := repos().Entry.GetByUUID(entry.UUID)
	require.NoError(t, err)
	require.True(t, updated.HasOfficialImage())
	assert.Equal(t, imageURL(imagepipeline.FileName(entry.UUID, imagepipeline.ThumbSmall)), *updated.Img256Path)
	assert.Equal(t, imageURL(imagepipeline.FileName(entry.UUID, imagepipeline.ThumbLarge)), *updated.Img512Path)
	assert.Equal(t, chosen.ImagePHash, *updated.ImagePHash)

	remaining, err := repos().PendingImage.ListByEntry(entry.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "sibling pending record must survive promotion")
	assert.Equal(t, sibling.UUID, remaining[0].UUID)

	// The promoted files now live under the entry's canonical names.
	for _, size := range []int{imagepipeline.ThumbSmall, imagepipeline.ThumbLarge} {
		_, err := os.Stat(filepath.Join(testImageRoot, imagepipeline.FileName(entry.UUID, size)))
		assert.NoError(t, err)
	}
}

func TestPromoteRejectsForeignPendingImage(t *testing.T) {
	app := setupAdminTest(t)

	owner := createTestEntry(t, "Pine Tree", 4)
	other := createTestEntry(t, "Oak Tree", 4)
	pending := stagePending(t, owner.ID, "0123456789abcdef")

	req := httptest.NewRequest(fiber.MethodPost,
		"/api/admin/entries/"+other.UUID+"/promote/"+pending.UUID, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Nothing moved: the pending record and the target entry are untouched.
	kept, err := repos().PendingImage.GetByUUID(pending.UUID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, kept.EntryID)

	untouched, err := repos().Entry.GetByUUID(other.UUID)
	require.NoError(t, err)
	assert.False(t, untouched.HasOfficialImage())
}
