// Package bulkimport validates a batch of catalog rows and reports
// partial success.
//
// Batch-level guards abort the whole import with zero side effects. Row
// failures never abort the batch: each bad row is reported with every
// applicable reason and the remaining rows keep going.
package bulkimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
	"github.com/craftatlas/craftatlas/internal/pkg/moderation"
)

const (
	// MaxPayloadBytes caps the raw import payload at 256 KiB.
	MaxPayloadBytes = 256 * 1024
	// MaxRows caps a single batch at 200 rows.
	MaxRows = 200
	// MaxNameLen matches the entry name column.
	MaxNameLen = 80
)

// ErrDuplicateKey is returned by Store.Insert when the exact-key unique
// constraint fires. The validator folds it into the same user-facing
// duplicate reason as the pre-insert check.
var ErrDuplicateKey = errors.New("duplicate catalog key")

// Row is one record of an import payload. Type and Biome accept a display
// name or a slug, case-insensitively.
type Row struct {
	Name  string `json:"name"`
	Tier  int    `json:"tier"`
	Type  string `json:"type"`
	Biome string `json:"biome"`
}

// Ref is a resolved taxonomy record.
type Ref struct {
	ID   uint
	Name string
}

// NewEntry is the accepted-row projection handed to the store. Entries are
// always inserted unconfirmed; an admin confirms later.
type NewEntry struct {
	Tier          int
	TypeID        uint
	BiomeID       uint
	Name          string
	CanonicalName string
}

// Store is the storage collaborator for one import run.
type Store interface {
	// ResolveType and ResolveBiome look up taxonomy case-insensitively by
	// display name or slug, returning nil when nothing matches.
	ResolveType(nameOrSlug string) (*Ref, error)
	ResolveBiome(nameOrSlug string) (*Ref, error)
	// ExistsByKey reports whether a persisted entry already holds the
	// exact (tier, type, biome, canonical name) key.
	ExistsByKey(tier int, typeID, biomeID uint, canonicalName string) (bool, error)
	// Insert persists an accepted row. ErrDuplicateKey signals a
	// constraint race with a concurrent writer.
	Insert(entry NewEntry) error
}

// RejectedRow carries a zero-based row index and every reason the row failed.
type RejectedRow struct {
	Index   int      `json:"index"`
	Reasons []string `json:"reasons"`
}

// Report is the partial-success outcome of one batch. OK is true whenever
// the batch-level guards passed, even if every row was rejected.
type Report struct {
	OK       bool          `json:"ok"`
	Accepted int           `json:"accepted"`
	Rejected []RejectedRow `json:"rejected"`
	Errors   []string      `json:"errors"`
}

// Validator orchestrates canonicalization, moderation, duplicate checks,
// and insertion over one batch. Construct with the collaborators; the
// validator itself holds no mutable state across calls.
type Validator struct {
	store  Store
	filter *moderation.Filter
}

// New returns a Validator over the given store and moderation filter.
func New(store Store, filter *moderation.Filter) *Validator {
	return &Validator{store: store, filter: filter}
}

// Import validates rows sequentially and inserts the ones that pass.
// payloadBytes is the raw request body length, checked against
// MaxPayloadBytes before any row is touched.
//
// Rows are processed in order because row N's duplicate check must see
// rows 1..N-1 in the intra-batch key set; parallelizing a batch would
// race on that set.
func (v *Validator) Import(payloadBytes int, rows []Row) Report {
	if payloadBytes > MaxPayloadBytes {
		return Report{Errors: []string{"payload too large (max 256 KiB)"}}
	}
	if len(rows) == 0 {
		return Report{Errors: []string{"no rows in payload"}}
	}
	if len(rows) > MaxRows {
		return Report{Errors: []string{fmt.Sprintf("too many rows (max %d)", MaxRows)}}
	}

	report := Report{OK: true}
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		reasons := v.validateRow(row, seen)
		if len(reasons) > 0 {
			report.Rejected = append(report.Rejected, RejectedRow{Index: i, Reasons: reasons})
			continue
		}
		report.Accepted++
	}
	return report
}

// validateRow checks one row, inserting it when clean. It returns every
// applicable failure reason, not just the first, so the caller can render
// a complete per-row error table.
func (v *Validator) validateRow(row Row, seen map[string]bool) []string {
	var reasons []string

	name := row.Name
	switch {
	case canonical.Canonicalize(name) == "":
		reasons = append(reasons, "name is required")
	case len(name) > MaxNameLen:
		reasons = append(reasons, fmt.Sprintf("name exceeds %d characters", MaxNameLen))
	}

	if row.Tier < 1 || row.Tier > 10 {
		reasons = append(reasons, "tier must be between 1 and 10")
	}

	var typeRef, biomeRef *Ref
	if row.Type == "" {
		reasons = append(reasons, "type is required")
	} else {
		ref, err := v.store.ResolveType(row.Type)
		switch {
		case err != nil:
			reasons = append(reasons, "type lookup failed")
		case ref == nil:
			reasons = append(reasons, fmt.Sprintf("unknown type %q", row.Type))
		default:
			typeRef = ref
		}
	}

	if row.Biome == "" {
		reasons = append(reasons, "biome is required")
	} else {
		ref, err := v.store.ResolveBiome(row.Biome)
		switch {
		case err != nil:
			reasons = append(reasons, "biome lookup failed")
		case ref == nil:
			reasons = append(reasons, fmt.Sprintf("unknown biome %q", row.Biome))
		default:
			biomeRef = ref
		}
	}

	if matched, term := v.filter.ContainsProhibited(name); matched {
		reasons = append(reasons, fmt.Sprintf("prohibited term detected: %s", term))
	}

	// Duplicate checks need the full key, so they only run once the
	// simple field checks passed.
	if len(reasons) > 0 || typeRef == nil || biomeRef == nil {
		return reasons
	}

	canon := canonical.Canonicalize(name)
	key := fmt.Sprintf("%d|%d|%d|%s", row.Tier, typeRef.ID, biomeRef.ID, canon)
	if seen[key] {
		return append(reasons, "duplicate within payload")
	}

	exists, err := v.store.ExistsByKey(row.Tier, typeRef.ID, biomeRef.ID, canon)
	if err != nil {
		return append(reasons, "storage lookup failed")
	}
	if exists {
		return append(reasons, "already exists for this tier/type/biome")
	}

	err = v.store.Insert(NewEntry{
		Tier:          row.Tier,
		TypeID:        typeRef.ID,
		BiomeID:       biomeRef.ID,
		Name:          strings.TrimSpace(name),
		CanonicalName: canon,
	})
	if errors.Is(err, ErrDuplicateKey) {
		// A concurrent writer won the race; same outcome as the
		// pre-insert check.
		return append(reasons, "already exists for this tier/type/biome")
	}
	if err != nil {
		return append(reasons, "storage insert failed")
	}

	seen[key] = true
	return nil
}
