package cart

import (
	"fmt"
	"time"

	"github.com/emedico/backend/internal/domain/catalog"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
)

// MaxLineQuantity caps the units of one item in a cart
const MaxLineQuantity = 99

// Line is one catalog item in the cart with its requested quantity.
// Name and price are captured when the item is added.
type Line struct {
	MedicineID           string            `json:"medicine_id"`
	Name                 string            `json:"name"`
	UnitPrice            valueobject.Money `json:"unit_price"`
	Quantity             int               `json:"quantity"`
	PrescriptionRequired bool              `json:"requires_prescription"`
	ImageURL             string            `json:"image_url"`
}

// LineTotal returns unit price × quantity
func (l Line) LineTotal() valueobject.Money {
	return l.UnitPrice.MultiplyByInt(int64(l.Quantity))
}

// Cart is the single shared cart of a storefront session. Every view
// reads and mutates the same aggregate; each mutation returns the
// recomputed totals.
type Cart struct {
	shared.SessionAggregateRoot
	Lines []Line
}

// NewCart creates an empty cart for a session
func NewCart(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	return &Cart{
		SessionAggregateRoot: shared.NewSessionAggregateRoot(sessionID),
		Lines:                make([]Line, 0),
	}, nil
}

// Totals returns the current totals
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// RequiresPrescription reports whether any line needs a prescription
func (c *Cart) RequiresPrescription() bool {
	for _, line := range c.Lines {
		if line.PrescriptionRequired {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the lines
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.Lines))
	copy(out, c.Lines)
	return out
}

// Add puts quantity units of item into the cart, merging with an existing
// line for the same item.
func (c *Cart) Add(item catalog.Medicine, quantity int) (Totals, error) {
	if err := checkQuantity(quantity); err != nil {
		return Totals{}, err
	}
	if !item.Available {
		return Totals{}, shared.NewDomainError("ITEM_UNAVAILABLE", item.Name+" is currently out of stock")
	}

	if idx := c.indexOf(item.ID); idx >= 0 {
		if c.Lines[idx].Quantity > MaxLineQuantity-quantity {
			return Totals{}, errTooMany()
		}
		c.Lines[idx].Quantity += quantity
	} else {
		c.Lines = append(c.Lines, Line{
			MedicineID:           item.ID,
			Name:                 item.Name,
			UnitPrice:            item.Price,
			Quantity:             quantity,
			PrescriptionRequired: item.PrescriptionRequired,
			ImageURL:             item.ImageURL,
		})
	}

	c.Record(NewCartItemAddedEvent(c, item.ID, quantity))
	return c.Totals(), nil
}

// SetQuantity replaces the quantity of an existing line
func (c *Cart) SetQuantity(medicineID string, quantity int) (Totals, error) {
	if err := checkQuantity(quantity); err != nil {
		return Totals{}, err
	}
	idx := c.indexOf(medicineID)
	if idx < 0 {
		return Totals{}, shared.ErrNotFound
	}

	c.Lines[idx].Quantity = quantity
	c.touch()
	return c.Totals(), nil
}

// Remove deletes a line
func (c *Cart) Remove(medicineID string) (Totals, error) {
	idx := c.indexOf(medicineID)
	if idx < 0 {
		return Totals{}, shared.ErrNotFound
	}

	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	c.Record(NewCartItemRemovedEvent(c, medicineID))
	return c.Totals(), nil
}

// Clear empties the cart
func (c *Cart) Clear() Totals {
	c.Lines = make([]Line, 0)
	c.Record(NewCartClearedEvent(c))
	return c.Totals()
}

func checkQuantity(quantity int) error {
	switch {
	case quantity < 1:
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	case quantity > MaxLineQuantity:
		return errTooMany()
	}
	return nil
}

func errTooMany() error {
	return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("A cart line may hold at most %d units", MaxLineQuantity))
}

func (c *Cart) indexOf(medicineID string) int {
	for i, line := range c.Lines {
		if line.MedicineID == medicineID {
			return i
		}
	}
	return -1
}

// touch stamps the modification time. The version is advanced by the
// repository when the change is persisted.
func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
