package repository

import (
	"errors"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/internal/pkg/bulkimport"
)

// importStore adapts the repositories to the bulk importer's storage
// contract.
type importStore struct {
	entries  EntryRepository
	taxonomy TaxonomyRepository
	clientIP string
}

// NewImportStore builds a bulkimport.Store over the given repositories.
// clientIP is stamped onto every inserted entry.
func NewImportStore(repos *Repositories, clientIP string) bulkimport.Store {
	return &importStore{
		entries:  repos.Entry,
		taxonomy: repos.Taxonomy,
		clientIP: clientIP,
	}
}

func (s *importStore) ResolveType(nameOrSlug string) (*bulkimport.Ref, error) {
	t, err := s.taxonomy.ResolveType(nameOrSlug)
	if err != nil || t == nil {
		return nil, err
	}
	return &bulkimport.Ref{ID: t.ID, Name: t.Name}, nil
}

func (s *importStore) ResolveBiome(nameOrSlug string) (*bulkimport.Ref, error) {
	b, err := s.taxonomy.ResolveBiome(nameOrSlug)
	if err != nil || b == nil {
		return nil, err
	}
	return &bulkimport.Ref{ID: b.ID, Name: b.Name}, nil
}

func (s *importStore) ExistsByKey(tier int, typeID, biomeID uint, canonicalName string) (bool, error) {
	entry, err := s.entries.FindByKey(tier, typeID, biomeID, canonicalName)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *importStore) Insert(row bulkimport.NewEntry) error {
	err := s.entries.Create(&models.Entry{
		Tier:          row.Tier,
		TypeID:        row.TypeID,
		BiomeID:       row.BiomeID,
		Name:          row.Name,
		CanonicalName: row.CanonicalName,
		Status:        models.StatusUnconfirmed,
		SubmitterIP:   s.clientIP,
	})
	if errors.Is(err, ErrDuplicateEntry) {
		return bulkimport.ErrDuplicateKey
	}
	return err
}
