package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// countingStore wraps a preference store and counts writes
type countingStore struct {
	session.PreferenceStore
	mu     sync.Mutex
	writes int
	getErr error
	setErr error
}

func (c *countingStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	return c.PreferenceStore.Get(ctx, clientID, key)
}

func (c *countingStore) Set(ctx context.Context, clientID, key, value string) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	return c.PreferenceStore.Set(ctx, clientID, key, value)
}

func newTestService(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	prefs := &countingStore{PreferenceStore: memory.NewPreferenceStore()}
	return NewService(memory.NewStateRepository(), prefs, zap.NewNop()), prefs
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to light and writes the marker", func(t *testing.T) {
		svc, prefs := newTestService(t)

		state, err := svc.Create(ctx, "client-1")
		require.NoError(t, err)
		assert.NotEmpty(t, state.SessionID)
		assert.Equal(t, session.PageHome, state.Page)
		assert.Equal(t, session.ThemeLight, state.Theme)
		assert.Equal(t, 1, prefs.writes)

		stored, ok, err := prefs.Get(ctx, "client-1", session.ThemePreferenceKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "light", stored)
	})

	t.Run("restores dark without rewriting", func(t *testing.T) {
		svc, prefs := newTestService(t)
		require.NoError(t, prefs.PreferenceStore.Set(ctx, "client-1", session.ThemePreferenceKey, "dark"))

		state, err := svc.Create(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, session.ThemeDark, state.Theme)
		assert.Equal(t, "dark", state.RootClass())
		assert.Equal(t, 0, prefs.writes)
	})

	t.Run("unknown marker falls back to light", func(t *testing.T) {
		svc, prefs := newTestService(t)
		require.NoError(t, prefs.PreferenceStore.Set(ctx, "client-1", session.ThemePreferenceKey, "DARK"))

		state, err := svc.Create(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, session.ThemeLight, state.Theme)
	})

	t.Run("unreadable store logs a warning and continues", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		prefs := &countingStore{PreferenceStore: memory.NewPreferenceStore(), getErr: errors.New("unavailable"), setErr: errors.New("unavailable")}
		svc := NewService(memory.NewStateRepository(), prefs, zap.New(core))

		state, err := svc.Create(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, session.ThemeLight, state.Theme)
		assert.Equal(t, 2, logs.FilterMessageSnippet("theme preference").Len())
	})
}

func TestService_Navigate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	state, err := svc.Create(ctx, "")
	require.NoError(t, err)

	_, err = svc.Scroll(ctx, state.SessionID, 480)
	require.NoError(t, err)

	next, err := svc.Navigate(ctx, state.SessionID, "cart")
	require.NoError(t, err)
	assert.Equal(t, session.PageCart, next.Page)
	assert.Equal(t, 0, next.ScrollY)

	next, err = svc.Navigate(ctx, state.SessionID, "nowhere")
	require.NoError(t, err)
	assert.Equal(t, session.PageHome, next.Page)

	got, err := svc.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	_, err = svc.Navigate(ctx, "missing", "cart")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ToggleTheme(t *testing.T) {
	ctx := context.Background()
	svc, prefs := newTestService(t)
	state, err := svc.Create(ctx, "client-1")
	require.NoError(t, err)

	dark, err := svc.ToggleTheme(ctx, state.SessionID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, dark.Theme)

	stored, _, err := prefs.Get(ctx, "client-1", session.ThemePreferenceKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", stored)

	light, err := svc.ToggleTheme(ctx, state.SessionID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, session.ThemeLight, light.Theme)
	assert.Equal(t, 3, prefs.writes)

	// setting the current theme leaves the store alone
	_, err = svc.SetTheme(ctx, state.SessionID, "client-1", session.ThemeLight)
	require.NoError(t, err)
	assert.Equal(t, 3, prefs.writes)
}

func TestService_ToggleTheme_WriteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	svc, prefs := newTestService(t)
	state, err := svc.Create(ctx, "client-1")
	require.NoError(t, err)

	prefs.setErr = errors.New("quota exceeded")
	next, err := svc.ToggleTheme(ctx, state.SessionID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, next.Theme)

	got, err := svc.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, got.Theme)
}

func TestService_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	state, err := svc.Create(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ToggleTheme(ctx, state.SessionID, "")
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.ThemeLight, got.Theme)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	state, err := svc.Create(ctx, "")
	require.NoError(t, err)

	var closed []string
	svc.OnClose(func(_ context.Context, id string) { closed = append(closed, id) })

	require.NoError(t, svc.Delete(ctx, state.SessionID))
	assert.Equal(t, []string{state.SessionID}, closed)

	exists, err := svc.Exists(ctx, state.SessionID)
	require.NoError(t, err)
	assert.False(t, exists)
}
