package memory

import (
	"context"

	"github.com/emedico/backend/internal/domain/catalog"
	"github.com/emedico/backend/internal/domain/shared"
)

// MedicineRepository serves a fixed catalog
type MedicineRepository struct {
	items []catalog.Medicine
	index map[string]int
}

// NewMedicineRepository serves items in the given order. A nil slice
// selects the seeded storefront catalog.
func NewMedicineRepository(items []catalog.Medicine) *MedicineRepository {
	if items == nil {
		items = catalog.SeedMedicines()
	}
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}
	return &MedicineRepository{items: items, index: index}
}

// FindAll returns a copy of the catalog in list order
func (r *MedicineRepository) FindAll(_ context.Context) ([]catalog.Medicine, error) {
	out := make([]catalog.Medicine, len(r.items))
	copy(out, r.items)
	return out, nil
}

// FindByID returns one item
func (r *MedicineRepository) FindByID(_ context.Context, id string) (*catalog.Medicine, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	item := r.items[i]
	return &item, nil
}

var _ catalog.MedicineRepository = (*MedicineRepository)(nil)
