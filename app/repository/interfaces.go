package repository

import (
	"github.com/craftatlas/craftatlas/app/models"
	"gorm.io/gorm"
)

// EntryFilter narrows List queries. Zero values mean "no filter".
type EntryFilter struct {
	Query   string // matched against canonical name and display name
	Tier    int
	TypeID  uint
	BiomeID uint
	Status  string
}

// EntryRepository defines catalog-entry persistence. Create and Update
// translate unique-key violations on (tier, type, biome, canonical name)
// into ErrDuplicateEntry so callers surface one duplicate outcome for both
// the advisory path and the constraint race.
type EntryRepository interface {
	Create(entry *models.Entry) error
	GetByID(id uint) (*models.Entry, error)
	GetByUUID(uuid string) (*models.Entry, error)
	// FindByKey does the exact-duplicate point lookup; nil when absent.
	FindByKey(tier int, typeID, biomeID uint, canonicalName string) (*models.Entry, error)
	// ListBucket loads the (tier, type, biome) bucket for the advisory
	// similarity scan.
	ListBucket(tier int, typeID, biomeID uint) ([]models.Entry, error)
	Update(entry *models.Entry) error
	UpdateStatus(id uint, status string) error
	SetOfficialImage(id uint, img256, img512, phash string) error
	ClearOfficialImage(id uint) error
	// AddAlias records a former name for the entry. Duplicate aliases are
	// silently ignored.
	AddAlias(entryID uint, alias string) error
	// Delete cascades the entry's pending images, reports, and aliases.
	Delete(id uint) error
	List(filter EntryFilter, offset, limit int) ([]models.Entry, error)
	Count(filter EntryFilter) (int64, error)
}

// TaxonomyRepository resolves types and biomes case-insensitively by
// display name or slug.
type TaxonomyRepository interface {
	ListTypes() ([]models.EntryType, error)
	ListBiomes() ([]models.Biome, error)
	ResolveType(nameOrSlug string) (*models.EntryType, error)
	ResolveBiome(nameOrSlug string) (*models.Biome, error)
}

// PendingImageRepository manages staged image candidates per entry.
type PendingImageRepository interface {
	Create(pending *models.PendingImage) error
	GetByUUID(uuid string) (*models.PendingImage, error)
	ListByEntry(entryID uint) ([]models.PendingImage, error)
	Delete(id uint) error
	// PurgeByEntry removes all pending records for the entry and returns
	// the removed rows so the caller can quarantine their files.
	PurgeByEntry(entryID uint) ([]models.PendingImage, error)
}

// ReportRepository manages user flags against entries.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	ListOpen(offset, limit int) ([]models.Report, error)
	Close(id uint) error
}

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Entry        EntryRepository
	Taxonomy     TaxonomyRepository
	PendingImage PendingImageRepository
	Report       ReportRepository
}

// NewRepositories wires all repository implementations.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Entry:        NewEntryRepository(db),
		Taxonomy:     NewTaxonomyRepository(db),
		PendingImage: NewPendingImageRepository(db),
		Report:       NewReportRepository(db),
	}
}
