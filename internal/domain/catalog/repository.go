package catalog

import "context"

// MedicineRepository provides read access to the catalog
type MedicineRepository interface {
	// FindAll returns every item in list order
	FindAll(ctx context.Context) ([]Medicine, error)
	// FindByID returns one item or shared.ErrNotFound
	FindByID(ctx context.Context, id string) (*Medicine, error)
}
