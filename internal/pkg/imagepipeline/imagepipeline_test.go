package imagepipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEntryID = "0b5c9e1a-8f64-4f0e-b7a2-3d1c5e7f9a01"

// testPNG renders a w x h gradient so derivatives have non-trivial pixel
// content for hashing.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// padTo appends trailing bytes up to size. PNG decoding stops at IEND, so
// padding keeps the payload decodable while pinning its exact length.
func padTo(t *testing.T, data []byte, size int) []byte {
	t.Helper()
	require.LessOrEqual(t, len(data), size)
	return append(data, make([]byte, size-len(data))...)
}

func TestProcessAndSaveRejectsOversizedPayload(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())
	_, err := p.ProcessAndSave(make([]byte, MaxUploadBytes+1), "image/png", testEntryID)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestProcessAndSaveAcceptsExactBoundary(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())
	payload := padTo(t, testPNG(t, 64, 64), MaxUploadBytes)
	res, err := p.ProcessAndSave(payload, "image/png", testEntryID)
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestProcessAndSaveRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())
	data := testPNG(t, 32, 32)

	_, err := p.ProcessAndSave(data, "application/octet-stream", testEntryID)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = p.ProcessAndSave(data, "image/gif", testEntryID)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestProcessAndSaveRejectsEmptyAndGarbage(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())

	_, err := p.ProcessAndSave(nil, "image/png", testEntryID)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = p.ProcessAndSave([]byte("not an image at all"), "image/png", testEntryID)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestProcessAndSaveDerivesBoundedThumbnails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)
	res, err := p.ProcessAndSave(testPNG(t, 1000, 500), "image/png", testEntryID)
	require.NoError(t, err)

	small, err := imaging.Open(filepath.Join(root, res.File256))
	require.NoError(t, err)
	assert.Equal(t, 256, small.Bounds().Dx())
	assert.Equal(t, 128, small.Bounds().Dy())

	large, err := imaging.Open(filepath.Join(root, res.File512))
	require.NoError(t, err)
	assert.Equal(t, 512, large.Bounds().Dx())
	assert.Equal(t, 256, large.Bounds().Dy())
}

func TestProcessAndSaveNeverUpscales(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)
	res, err := p.ProcessAndSave(testPNG(t, 100, 80), "image/png", testEntryID)
	require.NoError(t, err)

	for _, name := range []string{res.File256, res.File512} {
		img, err := imaging.Open(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx(), name)
		assert.Equal(t, 80, img.Bounds().Dy(), name)
	}
}

func TestPerceptualHashDeterministic(t *testing.T) {
	t.Parallel()

	data := testPNG(t, 300, 300)

	p1 := New(t.TempDir())
	res1, err := p1.ProcessAndSave(data, "image/png", testEntryID)
	require.NoError(t, err)

	p2 := New(t.TempDir())
	res2, err := p2.ProcessAndSave(data, "image/png", testEntryID)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), res1.PHash)
	assert.Equal(t, res1.PHash, res2.PHash)
}

func TestFileNameLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0b5c9e1a8f644f0eb7a23d1c5e7f9a01-256.webp", FileName(testEntryID, ThumbSmall))
	assert.Equal(t, "0b5c9e1a8f644f0eb7a23d1c5e7f9a01-512.webp", FileName(testEntryID, ThumbLarge))
}

func TestMoveToQuarantine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)

	_, err := p.ProcessAndSave(testPNG(t, 200, 200), "image/png", testEntryID)
	require.NoError(t, err)

	require.NoError(t, p.MoveToQuarantine(testEntryID))

	// Originals are gone, quarantine copies exist under their own names.
	assert.NoFileExists(t, filepath.Join(root, FileName(testEntryID, ThumbSmall)))
	assert.FileExists(t, filepath.Join(root, QuarantineDir, FileName(testEntryID, ThumbSmall)))
	assert.FileExists(t, filepath.Join(root, QuarantineDir, FileName(testEntryID, ThumbLarge)))
}

func TestMoveToQuarantineCollisionSafe(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)

	// First generation quarantined under the plain name.
	_, err := p.ProcessAndSave(testPNG(t, 200, 200), "image/png", testEntryID)
	require.NoError(t, err)
	require.NoError(t, p.MoveToQuarantine(testEntryID))

	// Second generation collides and must get a unique suffix.
	_, err = p.ProcessAndSave(testPNG(t, 220, 220), "image/png", testEntryID)
	require.NoError(t, err)
	require.NoError(t, p.MoveToQuarantine(testEntryID))

	entries, err := os.ReadDir(filepath.Join(root, QuarantineDir))
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestMoveToQuarantineMissingFilesIsNoop(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())
	assert.NoError(t, p.MoveToQuarantine(testEntryID))
}

func TestReplaceOfficialQuarantinesPrevious(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)

	_, err := p.ProcessAndSave(testPNG(t, 200, 200), "image/png", testEntryID)
	require.NoError(t, err)

	res, err := p.ReplaceOfficial(testPNG(t, 400, 400), "image/png", testEntryID)
	require.NoError(t, err)

	// New official artifacts in place, previous generation held in quarantine.
	assert.FileExists(t, filepath.Join(root, res.File256))
	assert.FileExists(t, filepath.Join(root, QuarantineDir, FileName(testEntryID, ThumbSmall)))
}

func TestPromoteConsumesPendingFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := New(root)
	pendingID := "7f3a2b1c-0d9e-4c8b-a765-4321fedcba98"

	_, err := p.ProcessAndSave(testPNG(t, 300, 300), "image/png", pendingID)
	require.NoError(t, err)

	res, err := p.Promote(testEntryID, pendingID)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, res.File256))
	assert.FileExists(t, filepath.Join(root, res.File512))
	assert.NoFileExists(t, filepath.Join(root, FileName(pendingID, ThumbSmall)))
	assert.NoFileExists(t, filepath.Join(root, FileName(pendingID, ThumbLarge)))
}
