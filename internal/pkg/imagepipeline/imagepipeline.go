// Package imagepipeline validates contributor uploads and derives the
// official-image artifacts for a catalog entry: two fit-within WebP
// thumbnails plus a 64-bit perceptual hash.
//
// The pipeline owns file layout under the configured image root:
// `<idHex>-256.webp` and `<idHex>-512.webp` for published artifacts and a
// `ToDelete/` quarantine subfolder for superseded files. Quarantined files
// are never deleted here; an external housekeeping process owns permanent
// cleanup.
//
// Concurrent calls for different ids are independent. Calls racing on the
// same id are not serialized internally; callers must hold a per-entry
// lock around replacement.
package imagepipeline

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes caps a single image payload at 300 KiB.
	MaxUploadBytes = 300 * 1024

	// Thumbnail bounding boxes. Derivatives fit within the box without
	// upscaling a smaller source.
	ThumbSmall = 256
	ThumbLarge = 512

	// QuarantineDir is the holding subfolder for superseded files.
	QuarantineDir = "ToDelete"

	webpQuality = 80
)

// Validation failures carry distinct user-facing reasons; callers surface
// them verbatim.
var (
	ErrEmptyPayload    = errors.New("empty image payload")
	ErrPayloadTooLarge = errors.New("image too large (max 300 KiB)")
	ErrUnsupportedType = errors.New("unsupported image type (JPEG, PNG, or WebP only)")
	ErrUndecodable     = errors.New("image data could not be decoded")
)

// allowedTypes is the declared content-type allow-list.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Result holds the artifacts derived from one upload. File256 and File512
// are bare filenames relative to the image root; PHash is the 16-hex-char
// average perceptual hash of the 512 derivative.
type Result struct {
	File256 string
	File512 string
	PHash   string
}

// Pipeline processes uploads into a single image root directory.
type Pipeline struct {
	root string
}

// New returns a Pipeline writing under root. The directory is created on
// first write, not here, so constructing a Pipeline is side-effect free.
func New(root string) *Pipeline {
	return &Pipeline{root: root}
}

// Root returns the configured image root directory.
func (p *Pipeline) Root() string {
	return p.root
}

// FileName returns the artifact filename for an owner id and bounding size.
func FileName(ownerID string, size int) string {
	return fmt.Sprintf("%s-%d.webp", idHex(ownerID), size)
}

// idHex strips the dashes out of a UUID so filenames stay flat.
func idHex(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// ProcessAndSave validates the payload, decodes it once (only the first
// frame of a multi-frame source survives), derives the 256 and 512
// fit-within WebP thumbnails, writes them keyed by ownerID, and computes
// the perceptual hash of the 512 derivative.
//
// The ownerID is an entry id for official artifacts or a pending-image id
// for staged candidates; the two never collide because ids are unique.
func (p *Pipeline) ProcessAndSave(data []byte, contentType, ownerID string) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrPayloadTooLarge
	}
	if !allowedTypes[strings.ToLower(contentType)] {
		return nil, ErrUnsupportedType
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodable
	}

	if err := os.MkdirAll(p.root, 0755); err != nil {
		return nil, fmt.Errorf("creating image root %s: %w", p.root, err)
	}

	small := imaging.Fit(img, ThumbSmall, ThumbSmall, imaging.Lanczos)
	large := imaging.Fit(img, ThumbLarge, ThumbLarge, imaging.Lanczos)

	res := &Result{
		File256: FileName(ownerID, ThumbSmall),
		File512: FileName(ownerID, ThumbLarge),
	}
	if err := saveWebP(small, filepath.Join(p.root, res.File256)); err != nil {
		return nil, err
	}
	if err := saveWebP(large, filepath.Join(p.root, res.File512)); err != nil {
		return nil, err
	}

	hash, err := averageHash(large)
	if err != nil {
		return nil, fmt.Errorf("computing perceptual hash: %w", err)
	}
	res.PHash = hash

	return res, nil
}

// ReplaceOfficial quarantines any published files for the entry and then
// writes fresh artifacts under the entry's canonical names. A failed
// quarantine move is logged but never blocks the new write.
func (p *Pipeline) ReplaceOfficial(data []byte, contentType, entryID string) (*Result, error) {
	if err := p.MoveToQuarantine(entryID); err != nil {
		fiberlog.Warn(fmt.Sprintf("[ImagePipeline] quarantine move for %s failed: %v", entryID, err))
	}
	return p.ProcessAndSave(data, contentType, entryID)
}

// Promote republishes a pending candidate as the entry's official image:
// existing official files move to quarantine, then the pending files are
// renamed onto the entry's canonical names. The pending record's files are
// consumed by the move.
func (p *Pipeline) Promote(entryID, pendingID string) (*Result, error) {
	if err := p.MoveToQuarantine(entryID); err != nil {
		fiberlog.Warn(fmt.Sprintf("[ImagePipeline] quarantine move for %s failed: %v", entryID, err))
	}

	res := &Result{
		File256: FileName(entryID, ThumbSmall),
		File512: FileName(entryID, ThumbLarge),
	}
	pairs := [][2]string{
		{FileName(pendingID, ThumbSmall), res.File256},
		{FileName(pendingID, ThumbLarge), res.File512},
	}
	for _, pair := range pairs {
		src := filepath.Join(p.root, pair[0])
		dst := filepath.Join(p.root, pair[1])
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("promoting %s: %w", pair[0], err)
		}
	}
	return res, nil
}

// MoveToQuarantine moves the owner's artifacts, if present, into the
// ToDelete/ subfolder. Files are moved, never deleted, so a concurrent
// reader serving an old file keeps a consistent copy and operators get a
// recovery window. Missing files are not an error.
func (p *Pipeline) MoveToQuarantine(ownerID string) error {
	quarantine := filepath.Join(p.root, QuarantineDir)
	if err := os.MkdirAll(quarantine, 0755); err != nil {
		return fmt.Errorf("creating quarantine dir: %w", err)
	}

	var firstErr error
	for _, size := range []int{ThumbSmall, ThumbLarge} {
		name := FileName(ownerID, size)
		src := filepath.Join(p.root, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(quarantine, name)
		if _, err := os.Stat(dst); err == nil {
			dst = collisionSafePath(dst)
		}
		if err := os.Rename(src, dst); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("quarantining %s: %w", name, err)
		}
	}
	return firstErr
}

// collisionSafePath derives a unique quarantine name from the occupied one
// by appending a timestamp and a short random suffix.
func collisionSafePath(dst string) string {
	dir := filepath.Dir(dst)
	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(filepath.Base(dst), ext)

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp alone still disambiguates at millisecond granularity.
		return filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, time.Now().UTC().Format("20060102150405.000"), ext))
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s%s",
		base, time.Now().UTC().Format("20060102150405.000"), hex.EncodeToString(buf), ext))
}

// saveWebP encodes img as lossy WebP at the fixed pipeline quality.
func saveWebP(img image.Image, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return fmt.Errorf("creating encoder options: %w", err)
	}
	if err := webp.Encode(out, img, opts); err != nil {
		return fmt.Errorf("encoding %s: %w", outputPath, err)
	}
	return nil
}

// averageHash renders the 64-bit average perceptual hash of img as a
// fixed-width hexadecimal string. The hash downscales to an 8x8 grayscale
// grid, takes the mean sample, and sets bit i when sample i is at or above
// it. A coarse similarity fingerprint, not a cryptographic digest.
func averageHash(img image.Image) (string, error) {
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}
