package memory

import (
	"context"
	"testing"
	"time"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()
	catalog := NewMedicineRepository(nil)

	_, err := repo.FindBySession(ctx, "s1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	c, err := cart.NewCart("s1")
	require.NoError(t, err)
	item, err := catalog.FindByID(ctx, "med001")
	require.NoError(t, err)
	_, err = c.Add(*item, 2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, 1, c.Version)

	a, err := repo.FindBySession(ctx, "s1")
	require.NoError(t, err)
	b, err := repo.FindBySession(ctx, "s1")
	require.NoError(t, err)

	a.Clear()
	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, 2, a.Version)

	_, err = b.Remove("med001")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, b), shared.ErrConcurrencyConflict)

	t.Run("stored copy is isolated from the caller", func(t *testing.T) {
		loaded, err := repo.FindBySession(ctx, "s1")
		require.NoError(t, err)
		_, err = loaded.Add(*item, 1)
		require.NoError(t, err)

		again, err := repo.FindBySession(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, again.IsEmpty())
	})

	require.NoError(t, repo.DeleteBySession(ctx, "s1"))
	_, err = repo.FindBySession(ctx, "s1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	lines := []cart.Line{{MedicineID: "med001", Name: "Paracetamol", UnitPrice: valueobject.MustUSD("5.99"), Quantity: 1}}
	place := func() *order.Order {
		o, err := order.Place(order.PlaceRequest{
			SessionID:     "s1",
			Lines:         lines,
			PaymentMethod: order.PaymentCashOnDelivery,
			Fulfillment:   order.FulfillmentPickup,
		})
		require.NoError(t, err)
		return o
	}

	older := place()
	older.PlacedAt = time.Now().Add(-time.Hour)
	newer := place()
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	orders, total, err := repo.FindBySession(ctx, "s1", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)

	page2 := shared.Filter{Page: 2, PageSize: 1}
	orders, _, err = repo.FindBySession(ctx, "s1", page2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, older.ID, orders[0].ID)

	orders, _, err = repo.FindBySession(ctx, "s1", shared.Filter{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)

	loaded, err := repo.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel("duplicate"))
	require.NoError(t, repo.Save(ctx, loaded))

	stale, err := repo.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	stale.Version = 1
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	prev := identity.HashCost
	identity.HashCost = bcrypt.MinCost
	t.Cleanup(func() { identity.HashCost = prev })

	user, err := identity.NewUser("Jane Doe", "jane@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))

	dup, err := identity.NewUser("Jane Again", "JANE@example.com", "secret123")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

	found, err := repo.FindByEmail(ctx, "Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	found.RecordLoginSuccess()
	require.NoError(t, repo.Update(ctx, found))
	assert.ErrorIs(t, repo.Update(ctx, user), shared.ErrConcurrencyConflict)

	assert.ErrorIs(t, repo.Update(ctx, dup), shared.ErrNotFound)

	exists, err := repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPrescriptionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPrescriptionRepository()

	upload, err := prescription.NewUpload("s1", "rx.png", "image/png", 100)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, upload))

	loaded, err := repo.FindBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, upload.ID, loaded.ID)

	require.NoError(t, repo.DeleteBySession(ctx, "s1"))
	require.NoError(t, repo.DeleteBySession(ctx, "s1"))
	_, err = repo.FindBySession(ctx, "s1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPreferenceStore(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore()

	_, ok, err := store.Get(ctx, "c1", session.ThemePreferenceKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "c1", session.ThemePreferenceKey, "dark"))
	value, ok, err := store.Get(ctx, "c1", session.ThemePreferenceKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)

	_, ok, _ = store.Get(ctx, "c2", session.ThemePreferenceKey)
	assert.False(t, ok)
}

func TestStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository()

	_, err := repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	state := session.NewState("s1", session.ThemeDark)
	require.NoError(t, repo.Save(ctx, state))
	loaded, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, loaded.Theme)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStateRepository_IdleSince(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository()
	now := time.Now()

	for id, age := range map[string]time.Duration{"old-b": 3 * time.Hour, "old-a": 5 * time.Hour, "fresh": time.Minute} {
		state := session.NewState(id, session.ThemeLight)
		state.UpdatedAt = now.Add(-age)
		require.NoError(t, repo.Save(ctx, state))
	}

	ids, err := repo.IdleSince(ctx, now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"old-a", "old-b"}, ids)
}

func TestMedicineRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicineRepository(nil)

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "med001", items[0].ID)

	items[0].Name = "changed"
	again, err := repo.FindByID(ctx, "med001")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Name)

	_, err = repo.FindByID(ctx, "med999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
